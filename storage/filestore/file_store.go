// Package filestore persists the local store as a single JSON document.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jrsteele09/pcrs-client/storage"
)

var _ storage.Store = (*FileStore)(nil)

// FileStore keeps the whole document in memory and rewrites the file on
// every change via a temp file and rename.
type FileStore struct {
	path   string
	values map[string]string
	mu     sync.RWMutex
}

// Open loads path if it exists. A missing file is an empty store.
func Open(path string) (*FileStore, error) {
	fs := &FileStore{
		path:   path,
		values: make(map[string]string),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[filestore.Open] read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(data, &fs.values); err != nil {
		return nil, fmt.Errorf("[filestore.Open] decode %s: %w", path, err)
	}
	return fs, nil
}

func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Get(key string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	v, ok := fs.values[key]
	if !ok {
		return "", storage.ErrKeyNotFound
	}
	return v, nil
}

func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.values[key]
	fs.values[key] = value
	if err := fs.flush(); err != nil {
		if had {
			fs.values[key] = prev
		} else {
			delete(fs.values, key)
		}
		return err
	}
	return nil
}

func (fs *FileStore) Delete(keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	changed := false
	for _, k := range keys {
		if _, ok := fs.values[k]; ok {
			delete(fs.values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return fs.flush()
}

func (fs *FileStore) Keys() ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	keys := make([]string, 0, len(fs.values))
	for k := range fs.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// flush must be called with the write lock held.
func (fs *FileStore) flush() error {
	data, err := json.MarshalIndent(fs.values, "", "  ")
	if err != nil {
		return fmt.Errorf("[filestore.flush] encode: %w", err)
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[filestore.flush] mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*.json")
	if err != nil {
		return fmt.Errorf("[filestore.flush] temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore.flush] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore.flush] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore.flush] close: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		return fmt.Errorf("[filestore.flush] rename: %w", err)
	}
	return nil
}
