package config

import (
	"fmt"
	"os"
	"strings"
)

// loadFromEnv overrides config from environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setEnv := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	// Storage
	if v := os.Getenv("TODO_STORAGE"); v != "" {
		cfg.Storage = v
		setEnv("storage")
	}
	if v := os.Getenv("TODO_DATA_DIR"); v != "" {
		cfg.DataDir = v
		setEnv("data_dir")
	}
	if v := os.Getenv("TODO_KEY"); v != "" {
		cfg.StorageKey = v
		setEnv("storage_key")
	}
	if v := os.Getenv("TODO_SCHEMA"); v != "" {
		cfg.SchemaFile = v
		setEnv("schema_file")
	}

	// View defaults
	if v := os.Getenv("TODO_URGENT_DAYS"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.UrgentDays = i
			setEnv("urgent_days")
		}
	}
	if v := os.Getenv("TODO_STATUS"); v != "" {
		cfg.DefaultStatus = v
		setEnv("default_status")
	}
	if v := os.Getenv("TODO_SORT"); v != "" {
		cfg.DefaultSort = v
		setEnv("default_sort")
	}
	if v := os.Getenv("TODO_FORMAT"); v != "" {
		cfg.DefaultFormat = v
		setEnv("default_format")
	}

	// Logging configuration
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv("TODO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv("TODO_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv("TODO_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		setEnv("log_caller")
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
