package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/nibzard/todo-go/internal/datadir"
)

// projectConfigNames are checked in the working directory, in order.
var projectConfigNames = []string{"todo.toml", ".todo.toml"}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	for _, name := range projectConfigNames {
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.todo/todo.toml first, then falls back to OS-specific
// config directories if ~/.todo doesn't have one.
func findUserConfigFile() string {
	for _, path := range userConfigCandidates() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// userConfigCandidates lists user config paths in lookup order.
func userConfigCandidates() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, datadir.ConfigPath(filepath.Join(home, datadir.Dir)))
	}
	if cfgDir := osUserConfigDir(); cfgDir != "" {
		paths = append(paths, filepath.Join(cfgDir, "todo", datadir.ConfigFile))
	}
	return paths
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		// respect XDG_CONFIG_HOME or use ~/.config
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Storage = DefaultStorage
	cfg.DataDir = DefaultDataDir
	cfg.StorageKey = DefaultStorageKey
	cfg.SchemaFile = ""
	cfg.UrgentDays = DefaultUrgentDays
	cfg.DefaultStatus = DefaultStatus
	cfg.DefaultSort = ""
	cfg.DefaultFormat = DefaultFormat
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
}

// GetConfigFile returns the highest-priority config file that was read.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// Entry is one resolved setting and where it came from.
type Entry struct {
	Key    string       `json:"key" yaml:"key"`
	Value  any          `json:"value" yaml:"value"`
	Source ConfigSource `json:"source" yaml:"source"`
}

// Entries lists every setting in a stable order.
func (cws *ConfigWithSources) Entries() []Entry {
	c := cws.Config
	values := map[string]any{
		"storage":        c.Storage,
		"data_dir":       c.DataDir,
		"storage_key":    c.StorageKey,
		"schema_file":    c.SchemaFile,
		"urgent_days":    c.UrgentDays,
		"default_status": c.DefaultStatus,
		"default_sort":   c.DefaultSort,
		"default_format": c.DefaultFormat,
		"log_level":      c.LogLevel,
		"log_format":     c.LogFormat,
		"log_timestamps": c.LogTimestamps,
		"log_caller":     c.LogCaller,
	}
	out := make([]Entry, 0, len(values))
	for _, field := range configFields() {
		out = append(out, Entry{Key: field, Value: values[field], Source: cws.Sources[field]})
	}
	return out
}
