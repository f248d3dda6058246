package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mamadbah2/harvest/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps one <collection>.json file per collection in a directory.
type Store struct {
	dir string
}

// New prepares the data directory.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save replaces the collection file through a temporary file and a rename.
func (s *Store) Save(_ context.Context, collection string, payload []byte) error {
	target := s.path(collection)
	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", collection, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", collection, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", collection, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("replace %s: %w", collection, err)
	}
	return nil
}

// Load reads the collection file.
func (s *Store) Load(_ context.Context, collection string) ([]byte, error) {
	data, err := os.ReadFile(s.path(collection))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return data, nil
}

func (s *Store) Close(context.Context) error { return nil }

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}
