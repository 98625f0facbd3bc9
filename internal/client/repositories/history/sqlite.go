package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/dbx"
	"github.com/dmitrijs2005/menuroll/internal/timex"
)

const historyColumns = `id, sync_id, cooked_at, category_counts, summary, snapshots, checklist, deleted, last_modified`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*models.HistoryRecord, error) {
	var (
		h         models.HistoryRecord
		counts    dbx.JSON[map[models.Category]int]
		snapshots dbx.JSON[[]models.RecipeSnapshot]
		checklist dbx.JSON[[]models.PrepItem]
		cooked    int64
		modified  int64
	)
	err := s.Scan(&h.ID, &h.SyncID, &cooked, &counts, &h.Summary, &snapshots, &checklist, &h.Deleted, &modified)
	if err != nil {
		return nil, err
	}
	h.CategoryCounts = counts.V
	h.Snapshots = snapshots.V
	h.Checklist = checklist.V
	h.CookedAt = timex.FromMillis(cooked)
	h.LastModified = timex.FromMillis(modified)
	return &h, nil
}

func collect(rows *sql.Rows) ([]models.HistoryRecord, error) {
	defer rows.Close()

	var result []models.HistoryRecord
	for rows.Next() {
		h, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		result = append(result, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, h *models.HistoryRecord) error {
	query := `INSERT INTO history (sync_id, cooked_at, category_counts, summary, snapshots, checklist, deleted, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		h.SyncID, timex.ToMillis(h.CookedAt),
		dbx.JSON[map[models.Category]int]{V: h.CategoryCounts}, h.Summary,
		dbx.JSON[[]models.RecipeSnapshot]{V: h.Snapshots}, dbx.JSON[[]models.PrepItem]{V: h.Checklist},
		h.Deleted, timex.ToMillis(h.LastModified))
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get history id: %w", err)
	}
	h.ID = id
	return nil
}

func (r *SQLiteRepository) get(ctx context.Context, where string, arg any, label any) (*models.HistoryRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM history WHERE `+where, arg)
	h, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history record %v: %w", label, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return h, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.HistoryRecord, error) {
	return r.get(ctx, `id = ?`, id, id)
}

func (r *SQLiteRepository) GetBySyncID(ctx context.Context, syncID string) (*models.HistoryRecord, error) {
	return r.get(ctx, `sync_id = ?`, syncID, syncID)
}

func (r *SQLiteRepository) List(ctx context.Context, limit, offset int) ([]models.HistoryRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM history WHERE deleted = 0
		ORDER BY cooked_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	return collect(rows)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE history SET deleted = 1, last_modified = ? WHERE id = ? AND deleted = 0`,
		timex.ToMillis(at), id)
	if err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}
	return expectOne(res, id)
}

func (r *SQLiteRepository) UpdateChecklist(ctx context.Context, id int64, checklist []models.PrepItem, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE history SET checklist = ?, last_modified = ? WHERE id = ?`,
		dbx.JSON[[]models.PrepItem]{V: checklist}, timex.ToMillis(at), id)
	if err != nil {
		return fmt.Errorf("failed to update checklist: %w", err)
	}
	return expectOne(res, id)
}

func expectOne(res sql.Result, id int64) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("history record %d: %w", id, common.ErrorNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, h *models.HistoryRecord) error {
	query := `INSERT INTO history (sync_id, cooked_at, category_counts, summary, snapshots, checklist, deleted, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sync_id) DO UPDATE SET cooked_at = excluded.cooked_at,
			category_counts = excluded.category_counts,
			summary = excluded.summary,
			snapshots = excluded.snapshots,
			checklist = excluded.checklist,
			deleted = excluded.deleted,
			last_modified = excluded.last_modified
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		h.SyncID, timex.ToMillis(h.CookedAt),
		dbx.JSON[map[models.Category]int]{V: h.CategoryCounts}, h.Summary,
		dbx.JSON[[]models.RecipeSnapshot]{V: h.Snapshots}, dbx.JSON[[]models.PrepItem]{V: h.Checklist},
		h.Deleted, timex.ToMillis(h.LastModified)).Scan(&h.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert history record %s: %w", h.SyncID, err)
	}
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]models.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+historyColumns+` FROM history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select history: %w", err)
	}
	return collect(rows)
}
