package recipes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/dbx"
	"github.com/dmitrijs2005/menuroll/internal/timex"
)

const recipeColumns = `id, sync_id, name, category, difficulty, estimated_minutes, icon, image_path,
	ingredients, steps, tags, deleted, created_at, last_modified`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(s rowScanner) (*models.Recipe, error) {
	var (
		r           models.Recipe
		ingredients dbx.JSON[[]models.Ingredient]
		steps       dbx.JSON[[]models.Step]
		tags        dbx.JSON[[]string]
		created     int64
		modified    int64
	)
	err := s.Scan(&r.ID, &r.SyncID, &r.Name, &r.Category, &r.Difficulty, &r.EstimatedMinutes,
		&r.Icon, &r.ImagePath, &ingredients, &steps, &tags, &r.Deleted, &created, &modified)
	if err != nil {
		return nil, err
	}
	r.Ingredients = ingredients.V
	r.Steps = steps.V
	r.Tags = tags.V
	r.CreatedAt = timex.FromMillis(created)
	r.LastModified = timex.FromMillis(modified)
	return &r, nil
}

func collect(rows *sql.Rows) ([]models.Recipe, error) {
	defer rows.Close()

	var result []models.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, rec *models.Recipe) error {
	query := `INSERT INTO recipes (sync_id, name, category, difficulty, estimated_minutes, icon, image_path,
			ingredients, steps, tags, deleted, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		rec.SyncID, rec.Name, string(rec.Category), string(rec.Difficulty), rec.EstimatedMinutes, rec.Icon, rec.ImagePath,
		dbx.JSON[[]models.Ingredient]{V: rec.Ingredients}, dbx.JSON[[]models.Step]{V: rec.Steps},
		dbx.JSON[[]string]{V: rec.Tags}, rec.Deleted,
		timex.ToMillis(rec.CreatedAt), timex.ToMillis(rec.LastModified))
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get recipe id: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, rec *models.Recipe) error {
	query := `UPDATE recipes SET name = ?, category = ?, difficulty = ?, estimated_minutes = ?, icon = ?,
			image_path = ?, ingredients = ?, steps = ?, tags = ?, last_modified = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		rec.Name, string(rec.Category), string(rec.Difficulty), rec.EstimatedMinutes, rec.Icon, rec.ImagePath,
		dbx.JSON[[]models.Ingredient]{V: rec.Ingredients}, dbx.JSON[[]models.Step]{V: rec.Steps},
		dbx.JSON[[]string]{V: rec.Tags}, timex.ToMillis(rec.LastModified), rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	return expectOne(res, rec.ID)
}

func expectOne(res sql.Result, id int64) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("recipe %d: %w", id, common.ErrorNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	rec, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) GetBySyncID(ctx context.Context, syncID string) (*models.Recipe, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE sync_id = ?`, syncID)
	rec, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipe %s: %w", syncID, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) List(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error) {
	var (
		where []string
		args  []any
	)
	switch {
	case f.OnlyDeleted:
		where = append(where, `deleted = 1`)
	case !f.IncludeDeleted:
		where = append(where, `deleted = 0`)
	}
	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, string(f.Category))
	}
	if f.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM json_each(recipes.tags) WHERE lower(json_each.value) = lower(?))`)
		args = append(args, f.Tag)
	}
	if f.NameContains != "" {
		where = append(where, `instr(lower(name), lower(?)) > 0`)
		args = append(args, f.NameContains)
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipes: %w", err)
	}
	return collect(rows)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recipes SET deleted = 1, last_modified = ? WHERE id = ? AND deleted = 0`,
		timex.ToMillis(at), id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return expectOne(res, id)
}

func (r *SQLiteRepository) Restore(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recipes SET deleted = 0, last_modified = ? WHERE id = ? AND deleted = 1`,
		timex.ToMillis(at), id)
	if err != nil {
		return fmt.Errorf("failed to restore recipe: %w", err)
	}
	return expectOne(res, id)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, rec *models.Recipe) error {
	query := `INSERT INTO recipes (sync_id, name, category, difficulty, estimated_minutes, icon, image_path,
			ingredients, steps, tags, deleted, created_at, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sync_id) DO UPDATE SET name = excluded.name,
			category = excluded.category,
			difficulty = excluded.difficulty,
			estimated_minutes = excluded.estimated_minutes,
			icon = excluded.icon,
			image_path = excluded.image_path,
			ingredients = excluded.ingredients,
			steps = excluded.steps,
			tags = excluded.tags,
			deleted = excluded.deleted,
			created_at = excluded.created_at,
			last_modified = excluded.last_modified
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		rec.SyncID, rec.Name, string(rec.Category), string(rec.Difficulty), rec.EstimatedMinutes, rec.Icon, rec.ImagePath,
		dbx.JSON[[]models.Ingredient]{V: rec.Ingredients}, dbx.JSON[[]models.Step]{V: rec.Steps},
		dbx.JSON[[]string]{V: rec.Tags}, rec.Deleted,
		timex.ToMillis(rec.CreatedAt), timex.ToMillis(rec.LastModified)).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert recipe %s: %w", rec.SyncID, err)
	}
	return nil
}

func (r *SQLiteRepository) RandomByCategory(ctx context.Context, category models.Category, n int, exclude []string) ([]models.Recipe, error) {
	if n <= 0 {
		return nil, nil
	}
	if exclude == nil {
		exclude = []string{}
	}
	ex, err := json.Marshal(exclude)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + recipeColumns + ` FROM recipes
		WHERE deleted = 0 AND category = ? AND sync_id NOT IN (SELECT value FROM json_each(?))
		ORDER BY RANDOM() LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, string(category), string(ex), n)
	if err != nil {
		return nil, fmt.Errorf("failed to select random recipes: %w", err)
	}
	return collect(rows)
}

func (r *SQLiteRepository) CountByCategory(ctx context.Context) (map[models.Category]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM recipes WHERE deleted = 0 GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Category]int)
	for rows.Next() {
		var c models.Category
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[c] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate counts: %w", err)
	}
	return counts, nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipes: %w", err)
	}
	return collect(rows)
}
