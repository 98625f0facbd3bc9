package models

// RollRequest asks for a number of dishes per category.
type RollRequest struct {
	Counts map[Category]int `json:"counts"`
}

// Total is the number of dishes requested.
func (r RollRequest) Total() int {
	n := 0
	for _, c := range r.Counts {
		if c > 0 {
			n += c
		}
	}
	return n
}

// Menu is the result of a roll, not yet saved.
type Menu struct {
	Items []Recipe
	// Shortfalls maps a category to how many requested dishes were missing.
	Shortfalls map[Category]int
}

// SyncIDs returns the sync ids of the menu items.
func (m *Menu) SyncIDs() []string {
	ids := make([]string, len(m.Items))
	for i, it := range m.Items {
		ids[i] = it.SyncID
	}
	return ids
}

// CategoryCounts counts menu items per category.
func (m *Menu) CategoryCounts() map[Category]int {
	counts := make(map[Category]int)
	for _, it := range m.Items {
		counts[it.Category]++
	}
	return counts
}
