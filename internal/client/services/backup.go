package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/menuroll/internal/buildinfo"
	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/history"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/recipes"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/logging"
	"github.com/dmitrijs2005/menuroll/internal/timex"
)

const (
	kindRecipe  = "recipe"
	kindHistory = "history"
	kindConfig  = "configuration"
)

// BackupService assembles backup documents and merges them into the local
// store.
type BackupService interface {
	// Export reads every recipe and history record, deleted ones included,
	// plus the exportable preferences.
	Export(ctx context.Context) (*models.ExportDocument, error)
	// ExportJSON is Export serialized as indented JSON.
	ExportJSON(ctx context.Context) ([]byte, error)

	// Import merges doc record by record. A failing record is reported in
	// the returned report and does not stop the pass; earlier writes stay
	// in place if the pass is interrupted.
	Import(ctx context.Context, doc *models.ExportDocument, strategy models.ImportStrategy) (*models.ImportReport, error)
	// ImportJSON parses data and calls Import.
	ImportJSON(ctx context.Context, data []byte, strategy models.ImportStrategy) (*models.ImportReport, error)
}

type backupService struct {
	db       *sql.DB
	settings SettingsService
	log      logging.Logger
}

func NewBackupService(db *sql.DB, settings SettingsService, log logging.Logger) BackupService {
	return &backupService{db: db, settings: settings, log: log}
}

func (s *backupService) Export(ctx context.Context) (*models.ExportDocument, error) {
	deviceID, err := s.settings.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("device id: %w", err)
	}

	rs, err := recipes.NewSQLiteRepository(s.db).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading recipes: %w", err)
	}
	hs, err := history.NewSQLiteRepository(s.db).All(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	prefs, err := metadata.NewSQLiteRepository(s.db).ListPrefix(ctx, common.PreferencePrefix)
	if err != nil {
		return nil, fmt.Errorf("reading preferences: %w", err)
	}

	doc := &models.ExportDocument{
		FormatVersion: models.FormatVersion,
		ExportedAt:    timex.ToMillis(timex.Now()),
		DeviceID:      deviceID,
		AppVersion:    buildinfo.Version(),
		Recipes:       rs,
		History:       hs,
		Configuration: make([]models.ConfigEntry, 0, len(prefs)),
	}
	if doc.Recipes == nil {
		doc.Recipes = []models.Recipe{}
	}
	if doc.History == nil {
		doc.History = []models.HistoryRecord{}
	}
	for _, p := range prefs {
		doc.Configuration = append(doc.Configuration, models.ConfigEntry{
			Key:          p.Key,
			Value:        string(p.Value),
			LastModified: timex.ToMillis(p.LastModified),
		})
	}
	return doc, nil
}

func (s *backupService) ExportJSON(ctx context.Context) ([]byte, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (s *backupService) ImportJSON(ctx context.Context, data []byte, strategy models.ImportStrategy) (*models.ImportReport, error) {
	var doc models.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedBackup, err)
	}
	return s.Import(ctx, &doc, strategy)
}

func (s *backupService) Import(ctx context.Context, doc *models.ExportDocument, strategy models.ImportStrategy) (*models.ImportReport, error) {
	if doc == nil {
		return nil, common.ErrMalformedBackup
	}
	if err := doc.CheckVersion(); err != nil {
		return nil, err
	}
	if strategy == "" {
		strategy = models.StrategyUpdateIfNewer
	}

	report := &models.ImportReport{}
	rr := recipes.NewSQLiteRepository(s.db)
	hr := history.NewSQLiteRepository(s.db)
	mr := metadata.NewSQLiteRepository(s.db)

	for i := range doc.Recipes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r := &doc.Recipes[i]
		out, err := s.mergeRecipe(ctx, rr, r, strategy)
		tally(report, &report.Recipes, kindRecipe, r.SyncID, out, err)
	}

	for i := range doc.History {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		h := &doc.History[i]
		out, err := s.mergeHistory(ctx, hr, h, strategy)
		tally(report, &report.History, kindHistory, h.SyncID, out, err)
	}

	for _, c := range doc.Configuration {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := s.mergeConfig(ctx, mr, c, strategy)
		tally(report, &report.Configuration, kindConfig, c.Key, out, err)
	}

	s.log.Info(ctx, "backup imported",
		"strategy", string(strategy),
		"device", doc.DeviceID,
		"changed", report.Changed(),
		"errors", len(report.Errors))
	return report, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeInserted
	outcomeUpdated
)

func tally(report *models.ImportReport, c *models.ImportCounts, kind, id string, out outcome, err error) {
	if err != nil {
		c.Failed++
		report.Errors = append(report.Errors, models.ImportError{Kind: kind, SyncID: id, Message: err.Error()})
		return
	}
	switch out {
	case outcomeInserted:
		c.Inserted++
	case outcomeUpdated:
		c.Updated++
	default:
		c.Skipped++
	}
}

func (s *backupService) mergeRecipe(ctx context.Context, repo recipes.Repository, r *models.Recipe, strategy models.ImportStrategy) (outcome, error) {
	if strings.TrimSpace(r.SyncID) == "" {
		return outcomeSkipped, errors.New("missing sync id")
	}
	r.Normalize()
	if err := r.Validate(); err != nil {
		return outcomeSkipped, err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.LastModified
	}

	local, err := repo.GetBySyncID(ctx, r.SyncID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return outcomeInserted, repo.Upsert(ctx, r)
	case err != nil:
		return outcomeSkipped, err
	case !strategy.ShouldReplace(local.LastModified, r.LastModified):
		return outcomeSkipped, nil
	default:
		return outcomeUpdated, repo.Upsert(ctx, r)
	}
}

func (s *backupService) mergeHistory(ctx context.Context, repo history.Repository, h *models.HistoryRecord, strategy models.ImportStrategy) (outcome, error) {
	if strings.TrimSpace(h.SyncID) == "" {
		return outcomeSkipped, errors.New("missing sync id")
	}
	if h.CategoryCounts == nil {
		h.CategoryCounts = map[models.Category]int{}
	}
	// Version 1 documents carry no checklist.
	if h.Checklist == nil {
		h.Checklist = []models.PrepItem{}
	}
	if h.Snapshots == nil {
		h.Snapshots = []models.RecipeSnapshot{}
	}

	local, err := repo.GetBySyncID(ctx, h.SyncID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return outcomeInserted, repo.Upsert(ctx, h)
	case err != nil:
		return outcomeSkipped, err
	case !strategy.ShouldReplace(local.LastModified, h.LastModified):
		return outcomeSkipped, nil
	default:
		return outcomeUpdated, repo.Upsert(ctx, h)
	}
}

func (s *backupService) mergeConfig(ctx context.Context, repo metadata.Repository, c models.ConfigEntry, strategy models.ImportStrategy) (outcome, error) {
	// Only preferences are importable.
	if !strings.HasPrefix(c.Key, common.PreferencePrefix) || c.Key == common.PreferencePrefix {
		return outcomeSkipped, fmt.Errorf("key %q is not importable", c.Key)
	}

	incoming := metadata.Entry{Key: c.Key, Value: []byte(c.Value), LastModified: timex.FromMillis(c.LastModified)}
	local, err := repo.GetEntry(ctx, c.Key)
	switch {
	case err != nil:
		return outcomeSkipped, err
	case local == nil:
		return outcomeInserted, repo.SetEntry(ctx, incoming)
	case !strategy.ShouldReplace(local.LastModified, incoming.LastModified):
		return outcomeSkipped, nil
	default:
		return outcomeUpdated, repo.SetEntry(ctx, incoming)
	}
}
