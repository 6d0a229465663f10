package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Unknown lists keys found in config files that no field accepts.
	Unknown []string
}

// Default values.
const (
	DefaultStorage    = "file"
	DefaultDataDir    = "~/.todo"
	DefaultStorageKey = "tasks"
	DefaultUrgentDays = 2
	DefaultStatus     = "all"
	DefaultFormat     = "text"
	DefaultLogLevel   = "warn"
	DefaultLogFormat  = "text"
)

// Config holds the full configuration for todo.
type Config struct {
	// Storage
	Storage    string `toml:"storage"` // file, sqlite, or memory
	DataDir    string `toml:"data_dir"`
	StorageKey string `toml:"storage_key"`
	SchemaFile string `toml:"schema_file"` // empty uses the built-in schema

	// View defaults
	UrgentDays    int    `toml:"urgent_days"`
	DefaultStatus string `toml:"default_status"`
	DefaultSort   string `toml:"default_sort"`
	DefaultFormat string `toml:"default_format"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}
