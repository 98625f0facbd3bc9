package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/filex"
	"github.com/dmitrijs2005/menuroll/internal/timex"
)

// Config holds runtime settings for the menuroll CLI and sync daemon.
//
// DatabasePath, KeyFile and LogFile default to files inside DataDir when
// left empty.
type Config struct {
	DataDir      string `json:"data_dir" yaml:"data_dir"`
	DatabasePath string `json:"database_path" yaml:"database_path"`
	KeyFile      string `json:"key_file" yaml:"key_file"`
	LogLevel     string `json:"log_level" yaml:"log_level"`
	LogBackend   string `json:"log_backend" yaml:"log_backend"`
	LogFile      string `json:"log_file" yaml:"log_file"`
	DeviceName   string `json:"device_name" yaml:"device_name"`

	// RemoteTimeout bounds a single request to the sync remote.
	RemoteTimeout timex.Duration `json:"remote_timeout" yaml:"remote_timeout"`

	// Passphrase unlocks locally stored credentials when a local passphrase
	// is set. It is read from MENUROLL_PASSPHRASE only.
	Passphrase string `json:"-" yaml:"-"`
}

const (
	defaultDataDir  = "~/.menuroll"
	databaseFile    = "menuroll.db"
	keyFile         = "device.key"
	logFile         = "menuroll.log"
	defaultLogLevel = "info"

	defaultRemoteTimeout = 30 * time.Second
)

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir
	c.DatabasePath = ""
	c.KeyFile = ""
	c.LogLevel = defaultLogLevel
	c.LogBackend = "slog"
	c.LogFile = ""
	c.DeviceName, _ = os.Hostname()
	c.RemoteTimeout = timex.Duration{Duration: defaultRemoteTimeout}
}

// resolve expands "~" and fills the paths derived from DataDir.
func (c *Config) resolve() error {
	var err error
	if c.DataDir, err = filex.ExpandHome(c.DataDir); err != nil {
		return err
	}

	derive := func(p *string, name string) error {
		if *p == "" {
			*p = filepath.Join(c.DataDir, name)
			return nil
		}
		*p, err = filex.ExpandHome(*p)
		return err
	}
	if err := derive(&c.DatabasePath, databaseFile); err != nil {
		return err
	}
	if err := derive(&c.KeyFile, keyFile); err != nil {
		return err
	}
	return derive(&c.LogFile, logFile)
}

// LoadConfig builds a Config from os.Args. See Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load constructs a Config, applies defaults, then overlays values from a
// JSON or YAML file (-c/-config), the environment (MENUROLL_*, optionally
// seeded from a dotenv file) and command-line flags. Later sources take
// precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}
