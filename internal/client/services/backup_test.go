package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/recipes"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	db       *sql.DB
	recipes  *recipeService
	roll     *rollService
	settings SettingsService
	backup   BackupService
}

func newStore(t *testing.T) *store {
	t.Helper()
	db := setupDB(t)
	settings := NewSettingsService(db, testKey())
	return &store{
		db:       db,
		recipes:  newRecipeSvc(db),
		roll:     &rollService{db: db, log: logging.Nop(), now: fixedClock(t0.Add(time.Hour))},
		settings: settings,
		backup:   NewBackupService(db, settings, logging.Nop()),
	}
}

// seed fills s with two recipes (one deleted), one history record and a
// preference.
func (s *store) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	a := addRecipe(t, s.recipes, "Goulash", models.CategoryMeat, models.Ingredient{Name: "Beef", Amount: "500", Unit: "g"})
	b := addRecipe(t, s.recipes, "Old soup", models.CategorySoup)
	require.NoError(t, s.recipes.Delete(ctx, b.ID))

	_, err := s.roll.Accept(ctx, &models.Menu{Items: []models.Recipe{*a}}, "dinner")
	require.NoError(t, err)
	require.NoError(t, s.settings.SetPreference(ctx, "theme", "dark"))
}

var ignoreLocalIDs = cmp.Options{
	cmpopts.IgnoreFields(models.Recipe{}, "ID"),
	cmpopts.IgnoreFields(models.HistoryRecord{}, "ID"),
}

func TestExport(t *testing.T) {
	s := newStore(t)
	s.seed(t)
	ctx := context.Background()

	doc, err := s.backup.Export(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.FormatVersion, doc.FormatVersion)
	assert.NotZero(t, doc.ExportedAt)
	assert.NotEmpty(t, doc.DeviceID)
	assert.Len(t, doc.Recipes, 2, "deleted recipes are exported")
	assert.Len(t, doc.History, 1)
	require.Len(t, doc.Configuration, 1)
	assert.Equal(t, "pref.theme", doc.Configuration[0].Key)

	data, err := s.backup.ExportJSON(ctx)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, k := range []string{"formatVersion", "exportedAt", "deviceId", "appVersion", "recipes", "history", "configuration"} {
		assert.Contains(t, raw, k)
	}
	assert.NotContains(t, string(data), common.SyncConfigKey)
	assert.NotContains(t, string(data), common.DeviceIDKey)
}

func TestExport_EmptyStore(t *testing.T) {
	s := newStore(t)
	data, err := s.backup.ExportJSON(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recipes": []`)
	assert.Contains(t, string(data), `"history": []`)
}

func TestImport_RoundTripIntoEmptyStore(t *testing.T) {
	src := newStore(t)
	src.seed(t)
	ctx := context.Background()

	data, err := src.backup.ExportJSON(ctx)
	require.NoError(t, err)

	dst := newStore(t)
	report, err := dst.backup.ImportJSON(ctx, data, models.StrategyUpdateIfNewer)
	require.NoError(t, err)
	assert.Equal(t, models.ImportCounts{Inserted: 2}, report.Recipes)
	assert.Equal(t, models.ImportCounts{Inserted: 1}, report.History)
	assert.Equal(t, models.ImportCounts{Inserted: 1}, report.Configuration)
	assert.Empty(t, report.Errors)

	want, err := src.backup.Export(ctx)
	require.NoError(t, err)
	got, err := dst.backup.Export(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(want.Recipes, got.Recipes, ignoreLocalIDs); diff != "" {
		t.Errorf("recipes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.History, got.History, ignoreLocalIDs); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want.Configuration, got.Configuration)
	assert.NotEqual(t, want.DeviceID, got.DeviceID)
}

func TestImport_SkipIsIdempotent(t *testing.T) {
	src := newStore(t)
	src.seed(t)
	ctx := context.Background()

	doc, err := src.backup.Export(ctx)
	require.NoError(t, err)

	dst := newStore(t)
	_, err = dst.backup.Import(ctx, doc, models.StrategySkip)
	require.NoError(t, err)
	first, err := dst.backup.Export(ctx)
	require.NoError(t, err)

	report, err := dst.backup.Import(ctx, doc, models.StrategySkip)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Changed())
	assert.Equal(t, models.ImportCounts{Skipped: 2}, report.Recipes)

	second, err := dst.backup.Export(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(first.Recipes, second.Recipes); diff != "" {
		t.Errorf("store changed on second import:\n%s", diff)
	}
}

func TestImport_Strategies(t *testing.T) {
	ctx := context.Background()

	local := models.Recipe{
		SyncID:       "r-1",
		Name:         "Local",
		Category:     models.CategoryMeat,
		CreatedAt:    t0,
		LastModified: t0.Add(time.Hour),
	}
	older := local
	older.Name = "Older"
	older.LastModified = t0
	equal := local
	equal.Name = "Equal"
	newer := local
	newer.Name = "Newer"
	newer.LastModified = t0.Add(2 * time.Hour)

	tests := []struct {
		name     string
		strategy models.ImportStrategy
		incoming models.Recipe
		wantName string
		want     models.ImportCounts
	}{
		{"update_if_newer keeps newer local", models.StrategyUpdateIfNewer, older, "Local", models.ImportCounts{Skipped: 1}},
		{"update_if_newer keeps local on tie", models.StrategyUpdateIfNewer, equal, "Local", models.ImportCounts{Skipped: 1}},
		{"update_if_newer takes newer incoming", models.StrategyUpdateIfNewer, newer, "Newer", models.ImportCounts{Updated: 1}},
		{"skip never replaces", models.StrategySkip, newer, "Local", models.ImportCounts{Skipped: 1}},
		{"overwrite always replaces", models.StrategyOverwrite, older, "Older", models.ImportCounts{Updated: 1}},
		{"empty strategy means update_if_newer", "", older, "Local", models.ImportCounts{Skipped: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			l := local
			require.NoError(t, recipes.NewSQLiteRepository(s.db).Upsert(ctx, &l))

			doc := &models.ExportDocument{FormatVersion: models.FormatVersion, Recipes: []models.Recipe{tt.incoming}}
			report, err := s.backup.Import(ctx, doc, tt.strategy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Recipes)

			got, err := recipes.NewSQLiteRepository(s.db).GetBySyncID(ctx, "r-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestImport_DeletionPropagates(t *testing.T) {
	ctx := context.Background()
	src := newStore(t)
	r := addRecipe(t, src.recipes, "Gone", models.CategoryOther)

	dst := newStore(t)
	doc, err := src.backup.Export(ctx)
	require.NoError(t, err)
	_, err = dst.backup.Import(ctx, doc, "")
	require.NoError(t, err)

	require.NoError(t, src.recipes.Delete(ctx, r.ID))
	doc, err = src.backup.Export(ctx)
	require.NoError(t, err)
	report, err := dst.backup.Import(ctx, doc, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Recipes.Updated)

	active, err := dst.recipes.List(ctx, models.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestImport_PerRecordErrors(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	doc := &models.ExportDocument{
		FormatVersion: models.FormatVersion,
		Recipes: []models.Recipe{
			{SyncID: "ok", Name: "Fine", Category: models.CategoryDrink, LastModified: t0},
			{SyncID: "", Name: "No id", Category: models.CategoryDrink},
			{SyncID: "bad-cat", Name: "Snack", Category: "snack"},
			{SyncID: "ok-2", Name: "Also fine", Category: models.CategoryDrink, LastModified: t0},
		},
		History: []models.HistoryRecord{{SyncID: ""}},
		Configuration: []models.ConfigEntry{
			{Key: common.DeviceIDKey, Value: "stolen"},
			{Key: common.SyncConfigKey, Value: "x"},
			{Key: "pref.units", Value: "metric", LastModified: t0.UnixMilli()},
		},
	}

	report, err := s.backup.Import(ctx, doc, "")
	require.NoError(t, err)
	assert.Equal(t, models.ImportCounts{Inserted: 2, Failed: 2}, report.Recipes)
	assert.Equal(t, models.ImportCounts{Failed: 1}, report.History)
	assert.Equal(t, models.ImportCounts{Inserted: 1, Failed: 2}, report.Configuration)
	require.Len(t, report.Errors, 5)
	assert.Equal(t, "bad-cat", report.Errors[1].SyncID)
	assert.Equal(t, kindRecipe, report.Errors[1].Kind)

	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.DeviceIDKey)
	require.NoError(t, err)
	assert.Nil(t, v, "device id is not importable")
}

func TestImport_Versions(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.backup.Import(ctx, &models.ExportDocument{FormatVersion: models.FormatVersion + 1}, "")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = s.backup.Import(ctx, &models.ExportDocument{}, "")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = s.backup.ImportJSON(ctx, []byte("not json"), "")
	assert.ErrorIs(t, err, common.ErrMalformedBackup)

	v1 := []byte(`{
		"formatVersion": 1,
		"exportedAt": 1714564800000,
		"recipes": [{"syncId": "v1-r", "name": "Tea", "category": "drink", "lastModified": 1714564800000}],
		"history": [{"syncId": "v1-h", "cookedAt": 1714564800000, "categoryCounts": {"drink": 1},
			"snapshots": [{"syncId": "v1-r", "name": "Tea", "category": "drink"}], "lastModified": 1714564800000}]
	}`)
	report, err := s.backup.ImportJSON(ctx, v1, "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Recipes.Inserted)
	assert.Equal(t, 1, report.History.Inserted)

	h, err := NewHistoryService(s.db).List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Empty(t, h[0].Checklist)
	assert.Equal(t, 1, h[0].TotalDishes())
}

func TestImport_Cancelled(t *testing.T) {
	src := newStore(t)
	src.seed(t)
	doc, err := src.backup.Export(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newStore(t).backup.Import(ctx, doc, "")
	assert.ErrorIs(t, err, context.Canceled)
}
