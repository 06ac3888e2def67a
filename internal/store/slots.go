package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Slots is a named string key/value store that survives restarts.
type Slots interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	// Set replaces the value stored under key.
	Set(key, value string) error
	Close() error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the Slots backend named by backend, rooted at dir.
func Open(backend, dir string) (Slots, error) {
	switch backend {
	case "", BackendFile:
		return NewFileSlots(dir), nil
	case BackendSQLite:
		return NewSQLiteSlots(filepath.Join(dir, "sustainify.db"))
	case BackendMemory:
		return NewMemorySlots(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// FileSlots keeps each slot in its own JSON file under dir.
type FileSlots struct {
	mu  sync.RWMutex
	dir string
}

func NewFileSlots(dir string) *FileSlots {
	return &FileSlots{dir: dir}
}

func (s *FileSlots) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.dir, name+".json")
}

func (s *FileSlots) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes to a temp file and renames it over the slot, so readers see
// either the old or the new value.
func (s *FileSlots) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close slot %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace slot %s: %w", key, err)
	}
	return nil
}

func (s *FileSlots) Close() error { return nil }

// MemorySlots keeps slots in process memory only.
type MemorySlots struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{m: make(map[string]string)}
}

func (s *MemorySlots) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemorySlots) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemorySlots) Close() error { return nil }
