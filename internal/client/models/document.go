package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/common"
)

const (
	// FormatVersion is written into new backups.
	FormatVersion = 2
	// MinFormatVersion is the oldest version Import accepts.
	MinFormatVersion = 1
)

// ConfigEntry is an exported preference.
type ConfigEntry struct {
	Key          string `json:"key"`
	Value        string `json:"value"`
	LastModified int64  `json:"lastModified"`
}

// ExportDocument is the backup file format.
type ExportDocument struct {
	FormatVersion int             `json:"formatVersion"`
	ExportedAt    int64           `json:"exportedAt"`
	DeviceID      string          `json:"deviceId"`
	AppVersion    string          `json:"appVersion"`
	Recipes       []Recipe        `json:"recipes"`
	History       []HistoryRecord `json:"history"`
	Configuration []ConfigEntry   `json:"configuration"`
}

// CheckVersion rejects documents this build cannot read.
func (d *ExportDocument) CheckVersion() error {
	if d.FormatVersion < MinFormatVersion || d.FormatVersion > FormatVersion {
		return fmt.Errorf("%w: %d (supported %d..%d)",
			common.ErrUnsupportedFormat, d.FormatVersion, MinFormatVersion, FormatVersion)
	}
	return nil
}

// ImportStrategy decides what happens when an incoming record already
// exists locally.
type ImportStrategy string

const (
	// StrategySkip only inserts records missing locally.
	StrategySkip ImportStrategy = "skip"
	// StrategyUpdateIfNewer replaces a local record when the incoming one has
	// a strictly larger LastModified.
	StrategyUpdateIfNewer ImportStrategy = "update_if_newer"
	// StrategyOverwrite always replaces the local record.
	StrategyOverwrite ImportStrategy = "overwrite"
)

// ParseStrategy maps a user string to a strategy. Empty means update_if_newer.
func ParseStrategy(s string) (ImportStrategy, error) {
	switch st := ImportStrategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StrategyUpdateIfNewer, nil
	case StrategySkip, StrategyUpdateIfNewer, StrategyOverwrite:
		return st, nil
	default:
		return "", fmt.Errorf("unknown import strategy %q", s)
	}
}

// ShouldReplace applies the strategy to an existing local record.
func (s ImportStrategy) ShouldReplace(local, incoming time.Time) bool {
	switch s {
	case StrategyOverwrite:
		return true
	case StrategyUpdateIfNewer:
		return incoming.After(local)
	default:
		return false
	}
}

// ImportCounts tallies outcomes for one record type.
type ImportCounts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

func (c ImportCounts) String() string {
	return fmt.Sprintf("%d inserted, %d updated, %d skipped, %d failed",
		c.Inserted, c.Updated, c.Skipped, c.Failed)
}

// ImportError records a single record that could not be merged.
type ImportError struct {
	Kind    string `json:"kind"`
	SyncID  string `json:"syncId"`
	Message string `json:"message"`
}

// ImportReport is the outcome of merging a document.
type ImportReport struct {
	Recipes       ImportCounts  `json:"recipes"`
	History       ImportCounts  `json:"history"`
	Configuration ImportCounts  `json:"configuration"`
	Errors        []ImportError `json:"errors"`
}

// Changed counts inserted plus updated records of every type.
func (r *ImportReport) Changed() int {
	return r.Recipes.Inserted + r.Recipes.Updated +
		r.History.Inserted + r.History.Updated +
		r.Configuration.Inserted + r.Configuration.Updated
}

func (r *ImportReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "recipes: %s\n", r.Recipes)
	fmt.Fprintf(&b, "history: %s\n", r.History)
	fmt.Fprintf(&b, "configuration: %s", r.Configuration)
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  %s %s: %s", e.Kind, e.SyncID, e.Message)
	}
	return b.String()
}
