package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mamadbah2/harvest/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps each collection as a JSON blob in a single state table.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path.
func New(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "harvest.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save upserts the collection payload.
func (s *Store) Save(ctx context.Context, collection string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		collection, payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", collection, err)
	}
	return nil
}

// Load returns the stored payload, or nil when the bucket is absent.
func (s *Store) Load(ctx context.Context, collection string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, collection).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	return payload, nil
}

// Close releases the database handle.
func (s *Store) Close(context.Context) error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
