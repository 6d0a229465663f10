package config

import (
	"flag"
)

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"storage":        "storage",
	"data-dir":       "data_dir",
	"key":            "storage_key",
	"schema":         "schema_file",
	"urgent-days":    "urgent_days",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines and parses the global CLI flags. Only flags that were
// set explicitly override cfg. If sources is non-nil, it tracks the source of
// each value.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	// Storage
	storageName := fs.String("storage", cfg.Storage, "Storage backend (file, sqlite, memory)")
	dataDir := fs.String("data-dir", cfg.DataDir, "Data directory for file and sqlite storage")
	key := fs.String("key", cfg.StorageKey, "Storage key holding the task list")
	schema := fs.String("schema", cfg.SchemaFile, "JSON Schema file used by doctor (default: built-in)")

	// View
	urgentDays := fs.Int("urgent-days", cfg.UrgentDays, "Days before the due date a task counts as urgent")

	// Logging
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	logTimestamps := fs.Bool("log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	logCaller := fs.Bool("log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Apply based on which flags were set
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "storage":
			cfg.Storage = *storageName
		case "data-dir":
			cfg.DataDir = *dataDir
		case "key":
			cfg.StorageKey = *key
		case "schema":
			cfg.SchemaFile = *schema
		case "urgent-days":
			cfg.UrgentDays = *urgentDays
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "log-timestamps":
			cfg.LogTimestamps = *logTimestamps
		case "log-caller":
			cfg.LogCaller = *logCaller
		default:
			return
		}
		if sources == nil {
			return
		}
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = SourceFlag
		}
	})

	return nil
}
