// Package daemon runs unattended sync: it opens the local store, reads the
// sync config and calls Sync on the configured interval until SIGINT or
// SIGTERM.
package daemon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/client/client"
	"github.com/dmitrijs2005/menuroll/internal/client/config"
	"github.com/dmitrijs2005/menuroll/internal/client/services"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/logging"
	"github.com/dmitrijs2005/menuroll/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	settings services.SettingsService
	sync     services.SyncService
	closers  []io.Closer

	// initialBackoff overrides scheduler.DefaultInitialBackoff in tests.
	initialBackoff time.Duration
}

// NewApp opens the log, the database and the credential key.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, logCloser, err := logging.Open(c.LogBackend, c.LogLevel, c.LogFile)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, client.WithDefaultTimeout(client.New, c.RemoteTimeout.Duration))
	if err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, err
	}
	app.closers = append(app.closers, logCloser)
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, connect client.Factory) (*App, error) {
	if err := client.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	key, err := services.NewKeyService(db, c.KeyFile).Unlock(ctx, []byte(c.Passphrase))
	if err != nil {
		return nil, fmt.Errorf("unlock credentials: %w", err)
	}

	settings := services.NewSettingsService(db, key)
	backup := services.NewBackupService(db, settings, logger)

	return &App{
		config:   c,
		logger:   logger.With("component", "syncd", "device", c.DeviceName),
		db:       db,
		settings: settings,
		sync:     services.NewSyncService(backup, settings, connect, logger),
		closers:  []io.Closer{db},
	}, nil
}

// Close releases the database and the log file.
func (app *App) Close() error {
	var first error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (app *App) initSignalHandler(ctx context.Context, cancel context.CancelFunc) func() error {
	return func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)

		select {
		case s := <-sigs:
			app.logger.Info(ctx, "signal received, stopping", "signal", s.String())
			cancel()
		case <-ctx.Done():
		}
		return nil
	}
}

// syncOnce is the scheduled job. Auto sync switched off in the meantime
// skips the run.
func (app *App) syncOnce(ctx context.Context) error {
	cfg, err := app.settings.SyncConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.AutoSync {
		app.logger.Info(ctx, "auto sync is off, skipping run")
		return nil
	}

	res, err := app.sync.Sync(ctx)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "sync finished", "message", res.Message)
	return nil
}

// Run syncs every AutoSyncInterval until ctx is cancelled or a signal
// arrives. It returns nil when auto sync is disabled.
func (app *App) Run(ctx context.Context) error {
	cfg, err := app.settings.SyncConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.Configured() {
		return common.ErrSyncNotConfigured
	}
	if !cfg.AutoSync {
		app.logger.Info(ctx, "auto sync is disabled, nothing to do")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "starting sync daemon", "interval", cfg.AutoSyncInterval.String(), "remote", cfg.Redacted().ServerURL)

	runner := &scheduler.Runner{
		Interval:       cfg.AutoSyncInterval,
		InitialBackoff: app.initialBackoff,
		RunAtStart:     true,
		Job:            app.syncOnce,
		Log:            app.logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(app.initSignalHandler(gctx, cancel))
	g.Go(func() error {
		err := runner.Run(gctx)
		cancel()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	app.logger.Info(context.Background(), "sync daemon stopped")
	return err
}
