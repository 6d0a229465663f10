// Package storage provides the key-value backends the task store persists
// into. Each backend holds string values under string keys; the task store
// only ever uses one key.
package storage

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/datadir"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/utils"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// KV is a closable key-value store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Backends lists the accepted backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendMemory}
}

// ValidBackend reports whether name selects a known backend.
func ValidBackend(name string) bool {
	switch utils.NormalizeName(name) {
	case BackendFile, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

// Option configures a backend.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger backends report recoveries to.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open selects a backend by name. File backends live inside dir, which is
// created when missing.
func Open(backend, dir string, opts ...Option) (KV, error) {
	switch utils.NormalizeName(backend) {
	case "", BackendFile:
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
		return OpenFile(datadir.StorePath(dir), opts...)
	case BackendSQLite:
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
		return OpenSQLite(datadir.DatabasePath(dir))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Location returns where backend keeps its data inside dir, or "" for
// backends without a location.
func Location(backend, dir string) string {
	switch utils.NormalizeName(backend) {
	case "", BackendFile:
		return datadir.StorePath(dir)
	case BackendSQLite:
		return datadir.DatabasePath(dir)
	default:
		return ""
	}
}

func ensureDir(dir string) error {
	if dir == "" {
		dir = datadir.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
