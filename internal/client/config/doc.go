// Package config loads runtime configuration for the menuroll CLI and the
// sync daemon.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected via -c or -config.
//  3. Environment variables MENUROLL_*, optionally loaded from a dotenv file
//     (-e/-env-file, or ./.env when it exists).
//  4. Command-line flags, which override earlier values.
//
// # File schema
//
//	data_dir: ~/.menuroll
//	database_path: ~/.menuroll/menuroll.db
//	key_file: ~/.menuroll/device.key
//	log_level: info
//	log_backend: zap
//	log_file: ~/.menuroll/menuroll.log
//	device_name: kitchen-tablet
//
// Paths left empty are derived from data_dir.
package config
