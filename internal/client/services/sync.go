package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/client"
	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/cryptox"
	"github.com/dmitrijs2005/menuroll/internal/logging"
	"github.com/dmitrijs2005/menuroll/internal/timex"
)

// SyncResult is the outcome of an upload, download or sync run.
type SyncResult struct {
	Success    bool
	Message    string
	Report     *models.ImportReport
	Uploaded   bool
	Downloaded bool
	// Hash is the SHA-256 of the uploaded plaintext document.
	Hash string
}

// SyncService moves the backup document between the local store and the
// remote configured in SyncConfig.
//
// Every method returns a result even on failure, with Success false and a
// message suitable for the user. The error is returned as well so callers
// can match it with errors.Is.
type SyncService interface {
	// Upload exports the local store, seals it when an encryption password
	// is set and replaces the remote backup.
	Upload(ctx context.Context) (*SyncResult, error)
	// Download fetches the remote backup and imports it with strategy.
	Download(ctx context.Context, strategy models.ImportStrategy) (*SyncResult, error)
	// Sync imports the remote backup with update_if_newer when it exists,
	// then uploads the merged state.
	Sync(ctx context.Context) (*SyncResult, error)
	// TestConnection pings the remote with the stored config.
	TestConnection(ctx context.Context) error
}

type syncService struct {
	backup   BackupService
	settings SettingsService
	connect  client.Factory
	log      logging.Logger
	now      func() time.Time
}

// NewSyncService returns a SyncService opening remotes with connect,
// normally client.New.
func NewSyncService(backup BackupService, settings SettingsService, connect client.Factory, log logging.Logger) SyncService {
	return &syncService{backup: backup, settings: settings, connect: connect, log: log, now: timex.Now}
}

func (s *syncService) open(ctx context.Context) (*models.SyncConfig, client.Client, error) {
	cfg, err := s.settings.SyncConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Configured() {
		return nil, nil, common.ErrSyncNotConfigured
	}

	c, err := s.connect(ctx, client.Options{
		URL:      cfg.ServerURL,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, c, nil
}

func (s *syncService) TestConnection(ctx context.Context) error {
	_, c, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Ping(ctx)
}

func (s *syncService) Upload(ctx context.Context) (*SyncResult, error) {
	res := &SyncResult{}
	cfg, c, err := s.open(ctx)
	if err != nil {
		return s.finish(ctx, res, err)
	}
	defer c.Close()

	err = s.upload(ctx, c, cfg, res)
	return s.finish(ctx, res, err)
}

func (s *syncService) Download(ctx context.Context, strategy models.ImportStrategy) (*SyncResult, error) {
	res := &SyncResult{}
	cfg, c, err := s.open(ctx)
	if err != nil {
		return s.finish(ctx, res, err)
	}
	defer c.Close()

	ok, err := c.Exists(ctx, cfg.BackupPath())
	if err == nil && !ok {
		err = fmt.Errorf("%s: %w", cfg.BackupPath(), client.ErrNotFound)
	}
	if err != nil {
		return s.finish(ctx, res, err)
	}

	err = s.download(ctx, c, cfg, strategy, res)
	return s.finish(ctx, res, err)
}

func (s *syncService) Sync(ctx context.Context) (*SyncResult, error) {
	res := &SyncResult{}
	cfg, c, err := s.open(ctx)
	if err != nil {
		return s.finish(ctx, res, err)
	}
	defer c.Close()

	ok, err := c.Exists(ctx, cfg.BackupPath())
	if err != nil {
		return s.finish(ctx, res, err)
	}
	if ok {
		if err := s.download(ctx, c, cfg, models.StrategyUpdateIfNewer, res); err != nil {
			return s.finish(ctx, res, err)
		}
	} else {
		s.log.Info(ctx, "no remote backup yet, uploading", "path", cfg.BackupPath())
	}

	err = s.upload(ctx, c, cfg, res)
	return s.finish(ctx, res, err)
}

func (s *syncService) upload(ctx context.Context, c client.Client, cfg *models.SyncConfig, res *SyncResult) error {
	plain, err := s.backup.ExportJSON(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	sum := sha256.Sum256(plain)
	res.Hash = hex.EncodeToString(sum[:])
	s.log.Debug(ctx, "backup assembled", "bytes", len(plain), "sha256", res.Hash, "previous", cfg.LastUploadHash)

	payload := plain
	if cfg.Encrypted() {
		if payload, err = cryptox.SealWithPassword(plain, cfg.EncryptionPassword); err != nil {
			return fmt.Errorf("encrypt: %w", err)
		}
	}

	if err := c.EnsureDir(ctx, cfg.RemotePath); err != nil {
		return err
	}
	if err := c.Upload(ctx, cfg.BackupPath(), payload); err != nil {
		return err
	}

	res.Uploaded = true
	s.log.Info(ctx, "backup uploaded", "path", cfg.BackupPath(), "bytes", len(payload), "encrypted", cfg.Encrypted())
	return nil
}

func (s *syncService) download(ctx context.Context, c client.Client, cfg *models.SyncConfig, strategy models.ImportStrategy, res *SyncResult) error {
	blob, err := c.Download(ctx, cfg.BackupPath())
	if err != nil {
		return err
	}

	if cryptox.IsSealed(blob) {
		if !cfg.Encrypted() {
			return common.ErrPasswordRequired
		}
		if blob, err = cryptox.OpenWithPassword(blob, cfg.EncryptionPassword); err != nil {
			return err
		}
	}

	report, err := s.backup.ImportJSON(ctx, blob, strategy)
	res.Report = report
	if err != nil {
		return err
	}

	res.Downloaded = true
	s.log.Info(ctx, "backup imported", "path", cfg.BackupPath(), "changed", report.Changed())
	return nil
}

// finish fills the user message and records the outcome in the sync config.
func (s *syncService) finish(ctx context.Context, res *SyncResult, err error) (*SyncResult, error) {
	res.Success = err == nil
	res.Message = resultMessage(res, err)

	if errors.Is(err, common.ErrSyncNotConfigured) {
		return res, err
	}

	status := models.SyncStatusSuccess
	if err != nil {
		status = models.SyncStatusFailed
		s.log.Warn(ctx, "sync failed", "error", err)
	}
	hash := ""
	if res.Uploaded {
		hash = res.Hash
	}
	// Use a fresh context so a cancelled run still records its failure.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if rerr := s.settings.RecordSync(recCtx, status, res.Message, hash, s.now()); rerr != nil {
		s.log.Error(ctx, "recording sync status", "error", rerr)
	}
	return res, err
}

func resultMessage(res *SyncResult, err error) string {
	if err != nil {
		return UserMessage(err)
	}

	var msg string
	switch {
	case res.Downloaded && res.Uploaded:
		msg = "Sync complete"
	case res.Uploaded:
		msg = "Backup uploaded"
	case res.Downloaded:
		msg = "Backup restored"
	default:
		msg = "Nothing to do"
	}
	if res.Report != nil {
		msg += fmt.Sprintf(": %d records changed", res.Report.Changed())
		if n := len(res.Report.Errors); n > 0 {
			msg += fmt.Sprintf(", %d failed", n)
		}
	}
	return msg
}

// UserMessage turns an error from the sync, backup or store layers into a
// sentence for the user.
func UserMessage(err error) string {
	var re *client.RemoteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "Cancelled"
	case errors.Is(err, common.ErrSyncNotConfigured):
		return "Sync is not configured, run syncconfig first"
	case errors.Is(err, common.ErrPasswordRequired):
		return "The remote backup is encrypted, set the encryption password in syncconfig"
	case errors.Is(err, cryptox.ErrDecrypt):
		return "Could not decrypt the backup, check the encryption password"
	case errors.Is(err, common.ErrUnsupportedFormat):
		return "The backup was written by a newer version of menuroll"
	case errors.Is(err, common.ErrMalformedBackup):
		return "The backup file is damaged or not a menuroll backup"
	case errors.Is(err, client.ErrUnsupportedScheme):
		return "Unsupported server address, use http(s)://, s3:// or postgres://"
	case errors.As(err, &re):
		if errors.Is(err, client.ErrNotFound) {
			return "No backup found on the server"
		}
		return re.Message
	case errors.Is(err, client.ErrNotFound):
		return "No backup found on the server"
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, common.ErrorUnauthorized):
		return "Authentication failed"
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.Is(err, client.ErrLocalDataNotAvailable):
		return "Local data is not available"
	default:
		return "Sync failed: " + err.Error()
	}
}
