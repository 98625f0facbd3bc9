package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acceptedMenu(t *testing.T) (*historyService, *models.HistoryRecord) {
	t.Helper()
	roll, rs := newRollSvc(t)
	r := addRecipe(t, rs, "Pancakes", models.CategoryDessert,
		models.Ingredient{Name: "Egg", Amount: "2", Unit: "pc"},
		models.Ingredient{Name: "Milk", Amount: "300", Unit: "ml"})

	h, err := roll.Accept(context.Background(), &models.Menu{Items: []models.Recipe{*r}}, "breakfast")
	require.NoError(t, err)
	return &historyService{db: roll.db, now: fixedClock(t0.Add(48 * time.Hour))}, h
}

func TestHistoryService_ListGet(t *testing.T) {
	svc, h := acceptedMenu(t)
	ctx := context.Background()

	list, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, h.SyncID, list[0].SyncID)

	got, err := svc.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", got.Summary)

	_, err = svc.Get(ctx, 404)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestHistoryService_ToggleChecklistItem(t *testing.T) {
	svc, h := acceptedMenu(t)
	ctx := context.Background()

	got, err := svc.ToggleChecklistItem(ctx, h.ID, 1)
	require.NoError(t, err)
	assert.True(t, got.Checklist[1].Done)
	assert.False(t, got.Checklist[0].Done)
	assert.True(t, got.LastModified.After(h.LastModified))

	done, total := got.ChecklistProgress()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, total)

	got, err = svc.ToggleChecklistItem(ctx, h.ID, 1)
	require.NoError(t, err)
	assert.False(t, got.Checklist[1].Done)

	_, err = svc.ToggleChecklistItem(ctx, h.ID, 2)
	assert.ErrorIs(t, err, ErrChecklistIndex)
	_, err = svc.ToggleChecklistItem(ctx, 99, 0)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestHistoryService_Delete(t *testing.T) {
	svc, h := acceptedMenu(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, h.ID))
	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Still retrievable for export.
	got, err := svc.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
}
