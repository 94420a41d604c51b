package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"time"

	"github.com/marcboeker/go-duckdb"
)

// DuckStore persists snapshots in an embedded DuckDB database. It serves
// the same single-key contract as FileStore; the database buys crash-safe
// overwrites and room for future per-key history without a schema change.
type DuckStore struct {
	db     *sql.DB
	dbPath string
}

// NewDuckStore opens (or creates) a snapshot database inside dataDir.
func NewDuckStore(dataDir string) (*DuckStore, error) {
	dbPath := filepath.Join(dataDir, "workspace.duckdb")

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key        VARCHAR PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshots table: %w", err)
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Get reads the value for key.
func (s *DuckStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying %s: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the value for key.
func (s *DuckStore) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	return nil
}

// Remove deletes the value for key. Absent keys are a no-op.
func (s *DuckStore) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *DuckStore) Close() error {
	return s.db.Close()
}

var _ Store = (*DuckStore)(nil)
