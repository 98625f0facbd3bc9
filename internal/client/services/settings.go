package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/dbx"
	"github.com/google/uuid"
)

// DefaultCountsPreference holds the roll request used when none is given.
const DefaultCountsPreference = "default_counts"

// SettingsService keeps per-device settings in the metadata table: the
// device id, the encrypted sync config and plain preferences. Preferences
// travel in backups, the rest never leaves the device.
type SettingsService interface {
	// DeviceID returns the installation id, generating it on first use.
	DeviceID(ctx context.Context) (string, error)

	// SyncConfig returns the stored config, or a normalized empty one.
	SyncConfig(ctx context.Context) (*models.SyncConfig, error)
	SaveSyncConfig(ctx context.Context, cfg *models.SyncConfig) error
	// RecordSync stores the outcome of a sync run. A non-empty hash also
	// replaces LastUploadHash.
	RecordSync(ctx context.Context, status models.SyncStatus, message, hash string, at time.Time) error

	// Preference returns a preference by name, without the "pref." prefix.
	Preference(ctx context.Context, name string) (string, bool, error)
	SetPreference(ctx context.Context, name, value string) error
	Preferences(ctx context.Context) (map[string]string, error)

	DefaultCounts(ctx context.Context) (map[models.Category]int, error)
	SetDefaultCounts(ctx context.Context, counts map[models.Category]int) error
}

type settingsService struct {
	db  *sql.DB
	key []byte
}

// NewSettingsService returns a SettingsService encrypting credentials with
// key (see KeyService).
func NewSettingsService(db *sql.DB, key []byte) SettingsService {
	return &settingsService{db: db, key: key}
}

func (s *settingsService) repo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *settingsService) DeviceID(ctx context.Context) (string, error) {
	repo := s.repo()
	id, err := repo.Get(ctx, common.DeviceIDKey)
	if err != nil {
		return "", err
	}
	if id != nil {
		return string(id), nil
	}

	newID := uuid.NewString()
	if err := repo.Set(ctx, common.DeviceIDKey, []byte(newID)); err != nil {
		return "", fmt.Errorf("saving device id: %w", err)
	}
	return newID, nil
}

func (s *settingsService) SyncConfig(ctx context.Context) (*models.SyncConfig, error) {
	cfg, err := loadSyncConfig(ctx, s.repo(), s.key)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &models.SyncConfig{}
		cfg.Normalize()
	}
	return cfg, nil
}

func (s *settingsService) SaveSyncConfig(ctx context.Context, cfg *models.SyncConfig) error {
	cfg.Normalize()
	return storeSyncConfig(ctx, s.repo(), cfg, s.key)
}

func (s *settingsService) RecordSync(ctx context.Context, status models.SyncStatus, message, hash string, at time.Time) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		cfg, err := loadSyncConfig(ctx, repo, s.key)
		if err != nil {
			return err
		}
		if cfg == nil {
			return common.ErrSyncNotConfigured
		}

		cfg.LastSyncAt = at
		cfg.LastSyncStatus = status
		cfg.LastSyncMessage = message
		if hash != "" {
			cfg.LastUploadHash = hash
		}
		return storeSyncConfig(ctx, repo, cfg, s.key)
	})
}

func prefKey(name string) string {
	return common.PreferencePrefix + strings.TrimPrefix(name, common.PreferencePrefix)
}

func (s *settingsService) Preference(ctx context.Context, name string) (string, bool, error) {
	v, err := s.repo().Get(ctx, prefKey(name))
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

func (s *settingsService) SetPreference(ctx context.Context, name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("preference name is empty")
	}
	return s.repo().Set(ctx, prefKey(name), []byte(value))
}

func (s *settingsService) Preferences(ctx context.Context) (map[string]string, error) {
	entries, err := s.repo().ListPrefix(ctx, common.PreferencePrefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[strings.TrimPrefix(e.Key, common.PreferencePrefix)] = string(e.Value)
	}
	return out, nil
}

func defaultCounts() map[models.Category]int {
	return map[models.Category]int{
		models.CategoryMeat:      1,
		models.CategoryVegetable: 1,
		models.CategorySoup:      1,
	}
}

func (s *settingsService) DefaultCounts(ctx context.Context) (map[models.Category]int, error) {
	v, ok, err := s.Preference(ctx, DefaultCountsPreference)
	if err != nil {
		return nil, err
	}
	if !ok {
		return defaultCounts(), nil
	}

	var counts map[models.Category]int
	if err := json.Unmarshal([]byte(v), &counts); err != nil {
		return defaultCounts(), nil
	}
	return counts, nil
}

func (s *settingsService) SetDefaultCounts(ctx context.Context, counts map[models.Category]int) error {
	clean := make(map[models.Category]int, len(counts))
	for c, n := range counts {
		if !c.Valid() {
			return fmt.Errorf("%w: unknown category %q", common.ErrInvalidRecipe, c)
		}
		if n > 0 {
			clean[c] = n
		}
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	return s.SetPreference(ctx, DefaultCountsPreference, string(b))
}
