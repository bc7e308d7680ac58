// Package metadata implements the SQLite-backed store for relational product
// metadata. Entries are keyed on (schema, name) only, which is why relation
// identity ignores the backend handle: a table and a view resolving to the
// same qualified name share one entry.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aristath/pipeline/internal/product"
)

// Store is a SQLite-backed product.MetadataBackend.
type Store struct {
	db *sql.DB
}

// Open creates a store at the given path. Creates parent directories if
// needed. Enables WAL mode and a busy timeout.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	// modernc.org/sqlite takes pragmas as _pragma=name(value) pairs;
	// mattn-style _journal_mode parameters are silently ignored.
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS relation_metadata (
			schema_name      TEXT NOT NULL,
			relation_name    TEXT NOT NULL,
			exists_remotely  INTEGER NOT NULL,
			content_hash     TEXT NOT NULL DEFAULT '',
			remote_timestamp TEXT NOT NULL DEFAULT '',
			updated_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (schema_name, relation_name)
		)
	`)
	return err
}

// Load reads the metadata entry for (schema, name). The second return value
// is false when no entry exists.
func (s *Store) Load(ctx context.Context, schema, name string) (product.Metadata, bool, error) {
	var meta product.Metadata
	var existsInt int
	var timestamp string

	err := s.db.QueryRowContext(ctx, `
		SELECT exists_remotely, content_hash, remote_timestamp
		FROM relation_metadata
		WHERE schema_name = ? AND relation_name = ?
	`, schema, name).Scan(&existsInt, &meta.Hash, &timestamp)

	if err == sql.ErrNoRows {
		return product.Metadata{}, false, nil
	}
	if err != nil {
		return product.Metadata{}, false, fmt.Errorf("failed to query metadata for %s.%s: %w", schema, name, err)
	}

	meta.Exists = existsInt != 0
	if timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, timestamp)
		if err != nil {
			return product.Metadata{}, false, fmt.Errorf("corrupt timestamp for %s.%s: %w", schema, name, err)
		}
		meta.Timestamp = ts
	}

	return meta, true, nil
}

// Save upserts the metadata entry for (schema, name).
func (s *Store) Save(ctx context.Context, schema, name string, m product.Metadata) error {
	existsInt := 0
	if m.Exists {
		existsInt = 1
	}
	timestamp := ""
	if !m.Timestamp.IsZero() {
		timestamp = m.Timestamp.Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO relation_metadata (schema_name, relation_name, exists_remotely, content_hash, remote_timestamp, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(schema_name, relation_name) DO UPDATE SET
			exists_remotely  = excluded.exists_remotely,
			content_hash     = excluded.content_hash,
			remote_timestamp = excluded.remote_timestamp,
			updated_at       = CURRENT_TIMESTAMP
	`, schema, name, existsInt, m.Hash, timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert metadata for %s.%s: %w", schema, name, err)
	}

	return nil
}

// Delete removes the entry for (schema, name). Deleting a missing entry is
// not an error.
func (s *Store) Delete(ctx context.Context, schema, name string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM relation_metadata
		WHERE schema_name = ? AND relation_name = ?
	`, schema, name)
	if err != nil {
		return fmt.Errorf("failed to delete metadata for %s.%s: %w", schema, name, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
