package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps a single snapshot in a file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string {
	return f.path
}

// Save writes to a temporary file and renames it so a crash never leaves a
// half-written snapshot.
func (f *FileStore) Save(s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (f *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Path: f.path, Err: ErrNotFound}
		}
		return nil, &LoadError{Path: f.path, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}

	s, err := Decode(data)
	if err != nil {
		return nil, &LoadError{Path: f.path, Err: err}
	}
	return s, nil
}

var _ Store = (*FileStore)(nil)
