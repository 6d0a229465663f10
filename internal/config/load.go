package config

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/storage"
	"github.com/nibzard/todo-go/internal/task"
	"github.com/nibzard/todo-go/internal/view"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.todo/todo.toml or OS-specific config dir)
// 3. Project config file (todo.toml or .todo.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := cws.loadFile(userConfigFile, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := cws.loadFile(projectConfigFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, cws.Sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"storage",
		"data_dir",
		"storage_key",
		"schema_file",
		"urgent_days",
		"default_status",
		"default_sort",
		"default_format",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) (toml.MetaData, error) {
	return toml.DecodeFile(path, cfg)
}

// loadFile decodes path over the current config. Only keys present in the
// file change value, so their source moves to source.
func (cws *ConfigWithSources) loadFile(path string, source ConfigSource) error {
	md, err := loadConfigFile(cws.Config, path)
	if err != nil {
		return err
	}
	cws.Files = append(cws.Files, path)
	for _, field := range configFields() {
		if md.IsDefined(field) {
			cws.Sources[field] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Unknown = append(cws.Unknown, fmt.Sprintf("%s (%s)", key.String(), path))
	}
	return nil
}

// finalizeConfig computes derived values and resolves paths.
func finalizeConfig(cfg *Config) error {
	// Determine project root
	if cfg.ProjectRoot == "" {
		// Use current working directory
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.DataDir = resolvePath(cfg.ProjectRoot, cfg.DataDir)
	cfg.SchemaFile = resolvePath(cfg.ProjectRoot, cfg.SchemaFile)
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if !storage.ValidBackend(c.Storage) {
		errs = append(errs, fmt.Errorf("storage: unknown backend %q, must be one of: %v", c.Storage, storage.Backends()))
	}
	if c.Storage != storage.BackendMemory && c.DataDir == "" {
		errs = append(errs, errors.New("data_dir: must not be empty"))
	}
	if c.UrgentDays < 0 {
		errs = append(errs, fmt.Errorf("urgent_days: must be >= 0, got %d", c.UrgentDays))
	}
	if _, err := task.ParseStatus(c.DefaultStatus); err != nil {
		errs = append(errs, fmt.Errorf("default_status: %w", err))
	}
	if _, err := task.ParseSortKey(c.DefaultSort); err != nil {
		errs = append(errs, fmt.Errorf("default_sort: %w", err))
	}
	if _, err := view.ParseFormat(c.DefaultFormat); err != nil {
		errs = append(errs, fmt.Errorf("default_format: %w", err))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level: invalid level %q", c.LogLevel))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format: invalid format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
