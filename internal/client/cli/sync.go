package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/services"
	"github.com/dmitrijs2005/menuroll/internal/common"
)

// clearSecret typed at a password prompt removes the stored value.
const clearSecret = "-"

// readSecret asks for a password. Empty keeps cur, "-" clears it.
func (a *App) readSecret(prompt, cur string) (string, error) {
	if cur != "" {
		prompt += " (Enter keeps the current one, - clears it)"
	}
	pw, err := GetPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)

	switch s := string(pw); s {
	case "":
		return cur, nil
	case clearSecret:
		return "", nil
	default:
		return s, nil
	}
}

func (a *App) SyncConfig(ctx context.Context, _ []string) error {
	cfg, err := a.settings.SyncConfig(ctx)
	if err != nil {
		return err
	}
	printSyncConfig(a.out, cfg)

	if cfg.ServerURL, err = GetDefaultText(a.reader, "Server URL (https://..., s3://bucket/prefix, postgres://...)", cfg.ServerURL, a.out); err != nil {
		return err
	}
	if cfg.Username, err = GetDefaultText(a.reader, "Username", cfg.Username, a.out); err != nil {
		return err
	}
	if cfg.Password, err = a.readSecret("Server password", cfg.Password); err != nil {
		return err
	}
	if cfg.RemotePath, err = GetDefaultText(a.reader, "Remote folder", cfg.RemotePath, a.out); err != nil {
		return err
	}
	if cfg.EncryptionPassword, err = a.readSecret("Backup encryption password (empty for none)", cfg.EncryptionPassword); err != nil {
		return err
	}
	if cfg.AutoSync, err = GetYesNo(a.reader, "Sync automatically in the background?", cfg.AutoSync, a.out); err != nil {
		return err
	}
	if cfg.AutoSync {
		s, err := GetDefaultText(a.reader, "Interval (at least 15m)", cfg.AutoSyncInterval.String(), a.out)
		if err != nil {
			return err
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return usageError(fmt.Sprintf("%q is not a valid interval, try 30m or 12h", s))
		}
		if d < models.MinAutoSyncInterval {
			fmt.Fprintf(a.out, "Interval raised to %s\n", models.MinAutoSyncInterval)
		}
		cfg.AutoSyncInterval = d
	}

	if err := a.settings.SaveSyncConfig(ctx, cfg); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Sync settings saved")
	return nil
}

func (a *App) SyncTest(ctx context.Context, _ []string) error {
	if err := a.syncer.TestConnection(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Connection OK")
	return nil
}

// report prints a sync result. The result message already describes a
// failure, so the error is only logged.
func (a *App) report(ctx context.Context, res *services.SyncResult, err error) error {
	if res == nil {
		return err
	}
	if err != nil {
		a.logger.Warn(ctx, "sync command failed", "error", err)
	}
	fmt.Fprintln(a.out, res.Message)
	if res.Report != nil && len(res.Report.Errors) > 0 {
		fmt.Fprintln(a.out, res.Report)
	}
	return nil
}

func (a *App) Upload(ctx context.Context, _ []string) error {
	res, err := a.syncer.Upload(ctx)
	return a.report(ctx, res, err)
}

func (a *App) Download(ctx context.Context, args []string) error {
	strategy, err := strategyArg(args)
	if err != nil {
		return err
	}
	res, err := a.syncer.Download(ctx, strategy)
	return a.report(ctx, res, err)
}

func (a *App) Sync(ctx context.Context, _ []string) error {
	res, err := a.syncer.Sync(ctx)
	return a.report(ctx, res, err)
}

// Passphrase sets, changes or removes the local passphrase protecting the
// stored sync credentials.
func (a *App) Passphrase(ctx context.Context, _ []string) error {
	pw, err := GetPassword("New local passphrase (empty to remove)", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if len(pw) > 0 {
		again, err := GetPassword("Repeat passphrase", a.out)
		if err != nil {
			return err
		}
		match := string(again) == string(pw)
		common.WipeByteArray(again)
		if !match {
			return usageError("Passphrases do not match")
		}
	}

	had, err := a.keys.HasPassphrase(ctx)
	if err != nil {
		return err
	}
	key, err := a.keys.SetPassphrase(ctx, a.key, pw)
	if err != nil {
		return err
	}
	a.setKey(key)

	switch {
	case len(pw) == 0 && had:
		fmt.Fprintln(a.out, "Local passphrase removed")
	case len(pw) == 0:
		fmt.Fprintln(a.out, "No local passphrase set")
	case had:
		fmt.Fprintln(a.out, "Local passphrase changed, update MENUROLL_PASSPHRASE for the sync daemon")
	default:
		fmt.Fprintln(a.out, "Local passphrase set, export MENUROLL_PASSPHRASE for the sync daemon")
	}
	return nil
}
