package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/migrations"
	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.SetMaxOpenConns(1)
	require.NoError(t, migrations.Up(context.Background(), db))
	return db
}

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

// fixedClock returns a clock that advances by one second per call.
func fixedClock(start time.Time) func() time.Time {
	cur := start.Add(-time.Second)
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

var t0 = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func addRecipe(t *testing.T, svc RecipeService, name string, c models.Category, ings ...models.Ingredient) *models.Recipe {
	t.Helper()
	r := &models.Recipe{Name: name, Category: c, Ingredients: ings}
	require.NoError(t, svc.Add(context.Background(), r))
	return r
}

func newRecipeSvc(db *sql.DB) *recipeService {
	return &recipeService{db: db, log: logging.Nop(), now: fixedClock(t0)}
}
