package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/history"
	"github.com/dmitrijs2005/menuroll/internal/dbx"
	"github.com/dmitrijs2005/menuroll/internal/timex"
)

// HistoryService reads and edits accepted menus.
type HistoryService interface {
	// List returns active records newest first. limit <= 0 means no limit.
	List(ctx context.Context, limit, offset int) ([]models.HistoryRecord, error)
	Get(ctx context.Context, id int64) (*models.HistoryRecord, error)
	Delete(ctx context.Context, id int64) error
	// ToggleChecklistItem flips the Done flag of one prep item and returns
	// the updated record.
	ToggleChecklistItem(ctx context.Context, id int64, item int) (*models.HistoryRecord, error)
}

type historyService struct {
	db  *sql.DB
	now func() time.Time
}

func NewHistoryService(db *sql.DB) HistoryService {
	return &historyService{db: db, now: timex.Now}
}

func (s *historyService) List(ctx context.Context, limit, offset int) ([]models.HistoryRecord, error) {
	return history.NewSQLiteRepository(s.db).List(ctx, limit, offset)
}

func (s *historyService) Get(ctx context.Context, id int64) (*models.HistoryRecord, error) {
	h, err := history.NewSQLiteRepository(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading history %d: %w", id, err)
	}
	return h, nil
}

func (s *historyService) Delete(ctx context.Context, id int64) error {
	repo := history.NewSQLiteRepository(s.db)
	h, err := repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading history %d: %w", id, err)
	}
	if err := repo.SoftDelete(ctx, id, bump(s.now(), h.LastModified)); err != nil {
		return fmt.Errorf("deleting history %d: %w", id, err)
	}
	return nil
}

func (s *historyService) ToggleChecklistItem(ctx context.Context, id int64, item int) (*models.HistoryRecord, error) {
	var out *models.HistoryRecord
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := history.NewSQLiteRepository(tx)
		h, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item < 0 || item >= len(h.Checklist) {
			return fmt.Errorf("%w: %d", ErrChecklistIndex, item)
		}

		h.Checklist[item].Done = !h.Checklist[item].Done
		h.LastModified = bump(s.now(), h.LastModified)
		if err := repo.UpdateChecklist(ctx, id, h.Checklist, h.LastModified); err != nil {
			return err
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating checklist of history %d: %w", id, err)
	}
	return out, nil
}
