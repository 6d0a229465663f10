// Package datadir provides constants and helpers for the .todo directory layout.
package datadir

import "path/filepath"

const (
	// Dir is the name of the todo state directory.
	Dir = ".todo"

	// StoreFile is the key-value file used by the file backend.
	StoreFile = "store.json"

	// DatabaseFile is the SQLite database used by the sqlite backend.
	DatabaseFile = "store.db"

	// ConfigFile is the config file name inside a .todo directory.
	ConfigFile = "todo.toml"
)

// StorePath returns the file backend path within a data directory.
func StorePath(dataDir string) string {
	return join(dataDir, StoreFile)
}

// DatabasePath returns the sqlite backend path within a data directory.
func DatabasePath(dataDir string) string {
	return join(dataDir, DatabaseFile)
}

// ConfigPath returns the config file path within a data directory.
func ConfigPath(dataDir string) string {
	return join(dataDir, ConfigFile)
}

func join(dataDir, file string) string {
	if dataDir == "" {
		dataDir = Dir
	}
	return filepath.Join(dataDir, file)
}
