package config

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/task"
	"github.com/nibzard/todo-go/internal/view"
)

// Status returns the default status filter, falling back to all.
func (c *Config) Status() task.Status {
	s, err := task.ParseStatus(c.DefaultStatus)
	if err != nil {
		return task.StatusAll
	}
	return s
}

// Sort returns the default sort key, falling back to insertion order.
func (c *Config) Sort() task.SortKey {
	k, err := task.ParseSortKey(c.DefaultSort)
	if err != nil {
		return task.SortNone
	}
	return k
}

// Format returns the default output format, falling back to text.
func (c *Config) Format() view.Format {
	f, err := view.ParseFormat(c.DefaultFormat)
	if err != nil {
		return view.FormatText
	}
	return f
}

// Key returns the storage key, falling back to the default.
func (c *Config) Key() string {
	if c.StorageKey == "" {
		return task.DefaultKey
	}
	return c.StorageKey
}

// Logger builds the console logger described by the logging settings.
// A nil writer means stderr.
func (c *Config) Logger(w io.Writer) *log.Logger {
	return logging.NewFromConfig(w, c.LogLevel, c.LogFormat, c.LogTimestamps, c.LogCaller)
}
