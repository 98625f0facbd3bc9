package models

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/timex"
)

// RecipeSnapshot is a copy of a recipe's display fields taken when a menu is
// accepted. It is never joined back to live recipes, so history stays
// readable after the recipe is edited or deleted.
type RecipeSnapshot struct {
	SyncID           string     `json:"syncId"`
	Name             string     `json:"name"`
	Category         Category   `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	EstimatedMinutes int        `json:"estimatedMinutes"`
	Icon             string     `json:"icon"`
	ImagePath        string     `json:"imagePath"`
}

// PrepItem is one line of the shopping/prep checklist.
type PrepItem struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
	Done   bool   `json:"done"`
}

// HistoryRecord is an accepted menu.
type HistoryRecord struct {
	ID     int64  `json:"-"`
	SyncID string `json:"syncId"`

	CookedAt       time.Time        `json:"cookedAt"`
	CategoryCounts map[Category]int `json:"categoryCounts"`
	Summary        string           `json:"summary"`
	Snapshots      []RecipeSnapshot `json:"snapshots"`
	Checklist      []PrepItem       `json:"checklist"`

	Deleted      bool      `json:"deleted"`
	LastModified time.Time `json:"lastModified"`
}

// TotalDishes sums CategoryCounts.
func (h *HistoryRecord) TotalDishes() int {
	n := 0
	for _, c := range h.CategoryCounts {
		n += c
	}
	return n
}

// ChecklistProgress returns how many checklist items are done, and the total.
func (h *HistoryRecord) ChecklistProgress() (done, total int) {
	for _, it := range h.Checklist {
		if it.Done {
			done++
		}
	}
	return done, len(h.Checklist)
}

// MarshalJSON writes timestamps as Unix milliseconds.
func (h HistoryRecord) MarshalJSON() ([]byte, error) {
	type alias HistoryRecord
	return json.Marshal(struct {
		alias
		CookedAt     int64 `json:"cookedAt"`
		LastModified int64 `json:"lastModified"`
	}{alias(h), timex.ToMillis(h.CookedAt), timex.ToMillis(h.LastModified)})
}

func (h *HistoryRecord) UnmarshalJSON(b []byte) error {
	type alias HistoryRecord
	aux := struct {
		*alias
		CookedAt     int64 `json:"cookedAt"`
		LastModified int64 `json:"lastModified"`
	}{alias: (*alias)(h)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	h.CookedAt = timex.FromMillis(aux.CookedAt)
	h.LastModified = timex.FromMillis(aux.LastModified)
	return nil
}
