package storage

import "maps"

// MemoryKV is a map-backed store that forgets everything on exit.
type MemoryKV struct {
	data map[string]string
}

// NewMemory returns an empty MemoryKV.
func NewMemory() *MemoryKV {
	return &MemoryKV{data: map[string]string{}}
}

func (kv *MemoryKV) Get(key string) (string, bool, error) {
	v, ok := kv.data[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(key, value string) error {
	kv.data[key] = value
	return nil
}

// Snapshot returns a copy of every stored entry.
func (kv *MemoryKV) Snapshot() map[string]string {
	return maps.Clone(kv.data)
}

func (kv *MemoryKV) Close() error {
	return nil
}
