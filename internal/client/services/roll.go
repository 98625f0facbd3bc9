package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/history"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/recipes"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/dbx"
	"github.com/dmitrijs2005/menuroll/internal/logging"
	"github.com/dmitrijs2005/menuroll/internal/timex"
	"github.com/google/uuid"
)

// RollService picks random menus and turns accepted ones into history.
type RollService interface {
	// Roll picks Counts[c] random active recipes for every category c.
	// Missing dishes are reported in Menu.Shortfalls, not as an error.
	Roll(ctx context.Context, req models.RollRequest) (*models.Menu, error)

	// Reroll replaces menu.Items[index] with another recipe of the same
	// category that is not on the menu yet.
	Reroll(ctx context.Context, menu *models.Menu, index int) error

	// Accept saves the menu as a history record with snapshots and a prep
	// checklist.
	Accept(ctx context.Context, menu *models.Menu, summary string) (*models.HistoryRecord, error)
}

type rollService struct {
	db  *sql.DB
	log logging.Logger
	now func() time.Time
}

func NewRollService(db *sql.DB, log logging.Logger) RollService {
	return &rollService{db: db, log: log, now: timex.Now}
}

func (s *rollService) Roll(ctx context.Context, req models.RollRequest) (*models.Menu, error) {
	if req.Total() == 0 {
		return nil, common.ErrEmptyMenu
	}

	repo := recipes.NewSQLiteRepository(s.db)
	menu := &models.Menu{Shortfalls: map[models.Category]int{}}

	for _, c := range models.Categories {
		n := req.Counts[c]
		if n <= 0 {
			continue
		}
		picked, err := repo.RandomByCategory(ctx, c, n, nil)
		if err != nil {
			return nil, fmt.Errorf("rolling %s: %w", c, err)
		}
		menu.Items = append(menu.Items, picked...)
		if short := n - len(picked); short > 0 {
			menu.Shortfalls[c] = short
		}
	}

	s.log.Debug(ctx, "menu rolled", "requested", req.Total(), "picked", len(menu.Items))
	return menu, nil
}

func (s *rollService) Reroll(ctx context.Context, menu *models.Menu, index int) error {
	if menu == nil || index < 0 || index >= len(menu.Items) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	cat := menu.Items[index].Category
	picked, err := recipes.NewSQLiteRepository(s.db).RandomByCategory(ctx, cat, 1, menu.SyncIDs())
	if err != nil {
		return fmt.Errorf("rerolling %s: %w", cat, err)
	}
	if len(picked) == 0 {
		return fmt.Errorf("%w: %s", common.ErrNothingToReroll, cat)
	}

	menu.Items[index] = picked[0]
	return nil
}

func (s *rollService) Accept(ctx context.Context, menu *models.Menu, summary string) (*models.HistoryRecord, error) {
	if menu == nil || len(menu.Items) == 0 {
		return nil, common.ErrEmptyMenu
	}

	now := s.now()
	rec := &models.HistoryRecord{
		SyncID:         uuid.NewString(),
		CookedAt:       now,
		CategoryCounts: menu.CategoryCounts(),
		Summary:        strings.TrimSpace(summary),
		LastModified:   now,
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rr := recipes.NewSQLiteRepository(tx)

		// Snapshot the stored rows, not the in-memory menu, so edits made
		// since the roll are captured.
		items := make([]models.Recipe, 0, len(menu.Items))
		for _, it := range menu.Items {
			r, err := rr.GetBySyncID(ctx, it.SyncID)
			if err != nil {
				return fmt.Errorf("loading %q: %w", it.Name, err)
			}
			items = append(items, *r)
			rec.Snapshots = append(rec.Snapshots, r.Snapshot())
		}
		rec.Checklist = BuildChecklist(items)

		return history.NewSQLiteRepository(tx).Create(ctx, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}

	s.log.Info(ctx, "menu accepted", "history_id", rec.ID, "dishes", len(rec.Snapshots))
	return rec, nil
}

// BuildChecklist merges the ingredients of items into prep items. Lines with
// the same name and unit are summed when every amount is a number; any other
// line is kept as is. Order follows first appearance.
func BuildChecklist(items []models.Recipe) []models.PrepItem {
	type acc struct {
		idx int
		sum float64
	}

	out := []models.PrepItem{}
	numeric := map[string]*acc{}

	for _, r := range items {
		for _, in := range r.Ingredients {
			key := strings.ToLower(strings.TrimSpace(in.Name)) + "\x00" + strings.ToLower(strings.TrimSpace(in.Unit))

			v, err := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64)
			if err != nil {
				out = append(out, models.PrepItem{Name: in.Name, Amount: in.Amount, Unit: in.Unit})
				continue
			}

			if a, ok := numeric[key]; ok {
				a.sum += v
				out[a.idx].Amount = formatAmount(a.sum)
				continue
			}
			numeric[key] = &acc{idx: len(out), sum: v}
			out = append(out, models.PrepItem{Name: in.Name, Amount: formatAmount(v), Unit: in.Unit})
		}
	}
	return out
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
