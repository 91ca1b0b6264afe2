package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileKV keeps all keys in one JSON document on disk. Every write rewrites
// the document through a temporary file and an atomic rename.
type fileKV struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileKV opens (or creates) the JSON document at path.
func NewFileKV(path string) (KV, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
		}
	}

	kv := &fileKV{path: path, values: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return kv, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read store file %s: %w", path, err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &kv.values); err != nil {
			return nil, fmt.Errorf("failed to decode store file %s: %w", path, err)
		}
		if kv.values == nil {
			kv.values = make(map[string]string)
		}
	}

	return kv, nil
}

func (f *fileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.values[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

func (f *fileKV) Put(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, existed := f.values[key]
	f.values[key] = string(value)

	if err := f.flush(); err != nil {
		if existed {
			f.values[key] = previous
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *fileKV) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	previous, existed := f.values[key]
	if !existed {
		return nil
	}
	delete(f.values, key)

	if err := f.flush(); err != nil {
		f.values[key] = previous
		return err
	}
	return nil
}

func (f *fileKV) Close() error {
	return nil
}

// flush writes the document. Callers hold f.mu.
func (f *fileKV) flush() error {
	raw, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file %s: %w", f.path, err)
	}
	return nil
}
