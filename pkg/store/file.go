package store

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the snapshot as a single JSON file. Writes go through a
// temp file plus rename so a crash mid-write never truncates the snapshot.
type FileStore struct {
	path string

	mu      sync.Mutex
	lastSum [sha256.Size]byte
	haveSum bool
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot file location (watched by the reload watcher).
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() ([]byte, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastSum = sha256.Sum256(raw)
	f.haveSum = true
	f.mu.Unlock()
	return raw, nil
}

func (f *FileStore) Save(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, StoreName+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	f.mu.Lock()
	f.lastSum = sha256.Sum256(data)
	f.haveSum = true
	f.mu.Unlock()
	return nil
}

// ExternallyModified reports whether the file on disk differs from the last
// payload this process read or wrote. The watcher uses it to skip reloads
// triggered by our own saves.
func (f *FileStore) ExternallyModified() (bool, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(raw)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.haveSum {
		return true, nil
	}
	return sum != f.lastSum, nil
}
