package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/menuroll/internal/flagx"
)

var knownFlags = []string{
	"-d", "-db", "-k", "-device",
	"-log-level", "-log-backend", "-log-file", "-timeout",
}

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string            data directory
//	-db string           SQLite database file
//	-k string            device key file
//	-device string       device name written into backups
//	-log-level string    debug, info, warn or error
//	-log-backend string  slog or zap
//	-log-file string     log destination ("stderr" to skip the file)
//	-timeout duration    timeout of a single request to the sync remote
//
// args is filtered with flagx.FilterArgs first, so flags owned by other
// components (-c, -e) do not cause a parse error.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("menuroll", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "database file")
	fs.StringVar(&cfg.KeyFile, "k", cfg.KeyFile, "device key file")
	fs.StringVar(&cfg.DeviceName, "device", cfg.DeviceName, "device name")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogBackend, "log-backend", cfg.LogBackend, "log backend")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file")
	fs.DurationVar(&cfg.RemoteTimeout.Duration, "timeout", cfg.RemoteTimeout.Duration, "remote request timeout")

	return fs.Parse(filtered)
}
