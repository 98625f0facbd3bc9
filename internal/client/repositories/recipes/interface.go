package recipes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
)

// Repository describes CRUD and query operations for recipes.
// Lookups by id or sync id return common.ErrorNotFound when no row matches.
type Repository interface {
	// Create inserts r and sets r.ID.
	Create(ctx context.Context, r *models.Recipe) error

	// Update overwrites the editable fields of the recipe with r.ID.
	Update(ctx context.Context, r *models.Recipe) error

	// GetByID returns a recipe, soft-deleted ones included.
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)

	// GetBySyncID returns a recipe, soft-deleted ones included.
	GetBySyncID(ctx context.Context, syncID string) (*models.Recipe, error)

	// List returns recipes matching f ordered by name.
	List(ctx context.Context, f models.RecipeFilter) ([]models.Recipe, error)

	// SoftDelete marks an active recipe deleted and stamps LastModified.
	SoftDelete(ctx context.Context, id int64, at time.Time) error

	// Restore clears the deleted flag and stamps LastModified.
	Restore(ctx context.Context, id int64, at time.Time) error

	// Upsert inserts or replaces the recipe with r.SyncID, keeping every
	// field of r including timestamps. r.ID is set to the local key.
	Upsert(ctx context.Context, r *models.Recipe) error

	// RandomByCategory picks up to n active recipes of category at random,
	// skipping the sync ids in exclude.
	RandomByCategory(ctx context.Context, category models.Category, n int, exclude []string) ([]models.Recipe, error)

	// CountByCategory counts active recipes per category.
	CountByCategory(ctx context.Context) (map[models.Category]int, error)

	// All returns every recipe, soft-deleted ones included, ordered by id.
	All(ctx context.Context) ([]models.Recipe, error)
}
