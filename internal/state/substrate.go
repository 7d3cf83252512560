package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound reports that no record has ever been written.
var ErrNotFound = errors.New("state: no record on disk")

// Substrate is the raw persistence boundary under the Store. It does no
// locking of its own; the Store serializes access above it.
type Substrate interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// FileSubstrate stores the record as a single file, replaced atomically
// (write to a temp file in the same directory, then rename) so a crash
// mid-write never leaves a torn record.
type FileSubstrate struct {
	path string
}

func NewFileSubstrate(path string) *FileSubstrate {
	return &FileSubstrate{path: path}
}

func (f *FileSubstrate) Path() string { return f.path }

func (f *FileSubstrate) Read() ([]byte, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (f *FileSubstrate) Write(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("state: replace record: %w", err)
	}
	return nil
}
