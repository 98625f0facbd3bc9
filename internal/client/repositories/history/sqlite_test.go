package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/migrations"
	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
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

var t0 = time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)

func newRecord(syncID string, cooked time.Time) *models.HistoryRecord {
	return &models.HistoryRecord{
		SyncID:         syncID,
		CookedAt:       cooked,
		CategoryCounts: map[models.Category]int{models.CategoryMeat: 1},
		Summary:        "dinner " + syncID,
		Snapshots:      []models.RecipeSnapshot{{SyncID: "r1", Name: "Steak", Category: models.CategoryMeat}},
		Checklist:      []models.PrepItem{{Name: "beef", Amount: "300", Unit: "g"}},
		LastModified:   cooked,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	in := newRecord("h1", t0)
	require.NoError(t, repo.Create(ctx, in))
	require.NotZero(t, in.ID)

	got, err := repo.GetByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(in, got))

	got, err = repo.GetBySyncID(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)

	_, err = repo.GetByID(ctx, 777)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = repo.GetBySyncID(ctx, "none")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_NewestFirstWithPaging(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, newRecord(id, t0.Add(time.Duration(i)*24*time.Hour))))
	}
	d := newRecord("d", t0.Add(72*time.Hour))
	require.NoError(t, repo.Create(ctx, d))
	require.NoError(t, repo.SoftDelete(ctx, d.ID, t0))

	all, err := repo.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].SyncID, all[1].SyncID, all[2].SyncID})

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].SyncID)
}

func TestSoftDelete(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	h := newRecord("h", t0)
	require.NoError(t, repo.Create(ctx, h))
	require.NoError(t, repo.SoftDelete(ctx, h.ID, t0.Add(time.Hour)))
	assert.ErrorIs(t, repo.SoftDelete(ctx, h.ID, t0), common.ErrorNotFound)

	got, err := repo.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Equal(t, t0.Add(time.Hour), got.LastModified)
}

func TestUpdateChecklist(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	h := newRecord("h", t0)
	require.NoError(t, repo.Create(ctx, h))

	list := []models.PrepItem{{Name: "beef", Amount: "300", Unit: "g", Done: true}}
	require.NoError(t, repo.UpdateChecklist(ctx, h.ID, list, t0.Add(time.Minute)))

	got, err := repo.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, list, got.Checklist)
	assert.Equal(t, t0.Add(time.Minute), got.LastModified)

	assert.ErrorIs(t, repo.UpdateChecklist(ctx, 999, list, t0), common.ErrorNotFound)
}

func TestUpsertAndAll(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	in := newRecord("u", t0)
	in.Checklist = nil
	require.NoError(t, repo.Upsert(ctx, in))
	id := in.ID

	in.Summary = "updated"
	in.Deleted = true
	in.LastModified = t0.Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, in))
	assert.Equal(t, id, in.ID)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, cmp.Diff(*in, all[0]))
}
