package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/menuroll/internal/client/client"
	"github.com/dmitrijs2005/menuroll/internal/client/config"
	"github.com/dmitrijs2005/menuroll/internal/client/models"
	"github.com/dmitrijs2005/menuroll/internal/client/services"
	"github.com/dmitrijs2005/menuroll/internal/common"
	"github.com/dmitrijs2005/menuroll/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	connect client.Factory
	closers []io.Closer

	keys     services.KeyService
	recipes  services.RecipeService
	roller   services.RollService
	history  services.HistoryService
	settings services.SettingsService
	backup   services.BackupService
	syncer   services.SyncService

	// key protects the stored sync credentials.
	key []byte
	// menu is the last roll, kept until it is accepted.
	menu *models.Menu

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the log file, the local database and the credential key.
// When a local passphrase is set and MENUROLL_PASSPHRASE is empty, the user
// is asked for it.
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

	app, err := newApp(ctx, c, logger, db, client.WithDefaultTimeout(client.New, c.RemoteTimeout.Duration), os.Stdin, os.Stdout)
	if err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, err
	}
	app.closers = append(app.closers, logCloser)
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, connect client.Factory, in io.Reader, out io.Writer) (*App, error) {
	app := &App{
		config:  c,
		logger:  logger.With("component", "cli", "device", c.DeviceName),
		db:      db,
		connect: connect,
		closers: []io.Closer{db},
		keys:    services.NewKeyService(db, c.KeyFile),
		recipes: services.NewRecipeService(db, logger),
		roller:  services.NewRollService(db, logger),
		history: services.NewHistoryService(db),
		reader:  bufio.NewReader(in),
		out:     out,
	}

	key, err := app.unlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("unlock credentials: %w", err)
	}
	app.setKey(key)
	return app, nil
}

func (a *App) unlock(ctx context.Context) ([]byte, error) {
	key, err := a.keys.Unlock(ctx, []byte(a.config.Passphrase))
	if !errors.Is(err, services.ErrPassphraseRequired) {
		return key, err
	}

	for attempt := 0; attempt < 3; attempt++ {
		pw, err := GetPassword("Local passphrase", a.out)
		if err != nil {
			return nil, err
		}
		key, err = a.keys.Unlock(ctx, pw)
		common.WipeByteArray(pw)
		if !errors.Is(err, common.ErrorUnauthorized) {
			return key, err
		}
		fmt.Fprintln(a.out, "Wrong passphrase")
	}
	return nil, common.ErrorUnauthorized
}

// setKey rebuilds the services that read the encrypted sync config.
func (a *App) setKey(key []byte) {
	a.key = key
	a.settings = services.NewSettingsService(a.db, key)
	a.backup = services.NewBackupService(a.db, a.settings, a.logger)
	a.syncer = services.NewSyncService(a.backup, a.settings, a.connect, a.logger)
}

// Close releases the database and the log file.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()
	a.logger.Info(ctx, "cli started")
	a.Root(ctx)
	return nil
}
