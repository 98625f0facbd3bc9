package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRecord_JSONRoundTrip(t *testing.T) {
	ts := time.Date(2025, 5, 6, 18, 0, 0, 0, time.UTC)
	h := HistoryRecord{
		SyncID:         "h1",
		CookedAt:       ts,
		CategoryCounts: map[Category]int{CategoryMeat: 1, CategorySoup: 1},
		Summary:        "Sunday dinner",
		Snapshots:      []RecipeSnapshot{{SyncID: "r1", Name: "Steak", Category: CategoryMeat}},
		Checklist:      []PrepItem{{Name: "beef", Amount: "400", Unit: "g", Done: true}},
		LastModified:   ts,
	}

	b, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"cookedAt":`+jsonInt(ts.UnixMilli()))

	var back HistoryRecord
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Empty(t, cmp.Diff(h, back))
}

func TestHistoryRecord_V1WithoutChecklist(t *testing.T) {
	var h HistoryRecord
	require.NoError(t, json.Unmarshal([]byte(`{"syncId":"x","cookedAt":1000,"lastModified":2000,"summary":"old"}`), &h))
	assert.Nil(t, h.Checklist)
	assert.Equal(t, int64(2000), h.LastModified.UnixMilli())
}

func TestHistoryRecord_Helpers(t *testing.T) {
	h := HistoryRecord{
		CategoryCounts: map[Category]int{CategoryMeat: 2, CategoryDrink: 1},
		Checklist:      []PrepItem{{Done: true}, {}, {Done: true}},
	}
	assert.Equal(t, 3, h.TotalDishes())
	done, total := h.ChecklistProgress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, total)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
