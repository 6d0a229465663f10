package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// FileKV keeps all keys in one JSON object file. The file is read once on
// open and rewritten whole on every Set.
type FileKV struct {
	path   string
	data   map[string]string
	logger *log.Logger
	backup string
}

// OpenFile loads path. A missing file is an empty store. A file that is not
// a JSON object is moved to path+".bak" and the store starts empty.
func OpenFile(path string, opts ...Option) (*FileKV, error) {
	o := buildOptions(opts)
	kv := &FileKV{path: path, data: map[string]string{}, logger: o.logger}
	if err := kv.load(); err != nil {
		return nil, err
	}
	return kv, nil
}

// Backup returns where an unreadable file was moved on open, or "".
func (kv *FileKV) Backup() string {
	return kv.backup
}

func (kv *FileKV) load() error {
	b, err := os.ReadFile(kv.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read store: %w", err)
	}
	if len(b) == 0 {
		return nil
	}
	var loaded map[string]string
	if err := json.Unmarshal(b, &loaded); err != nil {
		kv.setAside(err)
		return nil
	}
	if loaded != nil {
		kv.data = loaded
	}
	return nil
}

// setAside moves an unparseable file aside so the next Set cannot overwrite it.
func (kv *FileKV) setAside(parseErr error) {
	backup := kv.path + ".bak"
	if err := os.Rename(kv.path, backup); err != nil {
		kv.logger.Warn("unreadable store file, starting empty", "path", kv.path, "err", parseErr, "rename_err", err)
		return
	}
	kv.backup = backup
	kv.logger.Warn("unreadable store file moved aside, starting empty", "path", kv.path, "backup", backup, "err", parseErr)
}

func (kv *FileKV) Get(key string) (string, bool, error) {
	v, ok := kv.data[key]
	return v, ok, nil
}

// Set stores value and rewrites the file atomically.
func (kv *FileKV) Set(key, value string) error {
	prev, had := kv.data[key]
	kv.data[key] = value
	if err := kv.save(); err != nil {
		if had {
			kv.data[key] = prev
		} else {
			delete(kv.data, key)
		}
		return err
	}
	return nil
}

func (kv *FileKV) save() error {
	data, err := json.MarshalIndent(kv.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(kv.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp := kv.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write store tmp: %w", err)
	}
	if err := os.Rename(tmp, kv.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename store: %w", err)
	}
	return nil
}

// Close is a no-op; every Set is already on disk.
func (kv *FileKV) Close() error {
	return nil
}
