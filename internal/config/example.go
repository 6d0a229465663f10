package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo configuration file
# Values can be overridden by TODO_* environment variables or CLI flags

# Storage backend: file (store.json), sqlite (store.db), or memory
storage = "file"

# Directory holding store.json / store.db (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.todo"

# Key the task list is stored under
storage_key = "tasks"

# JSON Schema used by "todo doctor" (empty uses the built-in schema)
# schema_file = "tasks.schema.json"

# A pending task due within this many days (or overdue) is flagged urgent
urgent_days = 2

# Defaults for "todo ls"
default_status = "all"     # all, active, completed
# default_sort = "dueDate" # dueDate, priority, added (empty keeps insertion order)
default_format = "text"    # text, json, yaml

# Logging
log_level = "warn"   # debug, info, warn, error
log_format = "text"  # text, json, logfmt
log_timestamps = false
log_caller = false
`
}
