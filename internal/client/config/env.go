package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

var envVars = []struct {
	name  string
	field func(*Config) *string
}{
	{"MENUROLL_DATA_DIR", func(c *Config) *string { return &c.DataDir }},
	{"MENUROLL_DATABASE_PATH", func(c *Config) *string { return &c.DatabasePath }},
	{"MENUROLL_KEY_FILE", func(c *Config) *string { return &c.KeyFile }},
	{"MENUROLL_LOG_LEVEL", func(c *Config) *string { return &c.LogLevel }},
	{"MENUROLL_LOG_BACKEND", func(c *Config) *string { return &c.LogBackend }},
	{"MENUROLL_LOG_FILE", func(c *Config) *string { return &c.LogFile }},
	{"MENUROLL_DEVICE_NAME", func(c *Config) *string { return &c.DeviceName }},
	{"MENUROLL_PASSPHRASE", func(c *Config) *string { return &c.Passphrase }},
}

// parseEnv loads a dotenv file into the process environment (the one given
// by -e/-env-file, or ./.env when present) and then overlays cfg with the
// MENUROLL_* variables. Variables already set in the environment win over
// the file.
func parseEnv(cfg *Config, args []string) error {
	envFile := flagx.EnvFileFlag(args)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", defaultEnvFile, err)
	}

	for _, v := range envVars {
		if val, ok := os.LookupEnv(v.name); ok && val != "" {
			*v.field(cfg) = val
		}
	}

	if val := os.Getenv("MENUROLL_REMOTE_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("MENUROLL_REMOTE_TIMEOUT: %w", err)
		}
		cfg.RemoteTimeout.Duration = d
	}
	return nil
}
