package history

import (
	"context"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
)

// Repository stores accepted menus. Lookups return common.ErrorNotFound when
// no row matches.
type Repository interface {
	// Create inserts h and sets h.ID.
	Create(ctx context.Context, h *models.HistoryRecord) error
	GetByID(ctx context.Context, id int64) (*models.HistoryRecord, error)
	GetBySyncID(ctx context.Context, syncID string) (*models.HistoryRecord, error)
	// List returns active records, newest first.
	List(ctx context.Context, limit, offset int) ([]models.HistoryRecord, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	// Upsert inserts or replaces the record with h.SyncID, keeping every field.
	Upsert(ctx context.Context, h *models.HistoryRecord) error
	// All returns every record, deleted ones included, ordered by id.
	All(ctx context.Context) ([]models.HistoryRecord, error)
	// UpdateChecklist replaces the checklist and stamps LastModified.
	UpdateChecklist(ctx context.Context, id int64, checklist []models.PrepItem, at time.Time) error
}
