package settings

import (
	"path/filepath"
	"sync"
)

// Store hands out read-only settings snapshots.
type Store interface {
	Snapshot() Settings
}

// Static is a Store that always returns the same settings.
type Static Settings

// Snapshot implements Store.
func (s Static) Snapshot() Settings {
	return Settings(s)
}

// FileStore is a Store backed by a YAML file. Reload replaces the snapshot
// atomically; a failed reload keeps the previous one.
type FileStore struct {
	path     string
	envFiles []string

	mu      sync.RWMutex
	current Settings
}

// NewFileStore loads path and returns a store serving it. When no env files
// are given, a ".env" file next to the settings file is loaded if present.
func NewFileStore(path string, envFiles ...string) (*FileStore, error) {
	if len(envFiles) == 0 && path != "" {
		envFiles = []string{filepath.Join(filepath.Dir(path), ".env")}
	}

	store := &FileStore{path: path, envFiles: envFiles}
	if _, err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Path returns the settings file path.
func (s *FileStore) Path() string {
	return s.path
}

// Snapshot implements Store.
func (s *FileStore) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads the env files and the settings file.
func (s *FileStore) Reload() (Settings, error) {
	if err := LoadEnvFiles(s.envFiles...); err != nil {
		return s.Snapshot(), err
	}

	loaded, err := Load(s.path)
	if err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded, nil
}
