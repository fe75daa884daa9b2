// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists fetched records in SQLite so repeated runs over
// the same bibliography skip the network.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citecheck/pkg/types"
)

// Store is a TTL cache keyed by source, method, and query. Only positive
// lookups are stored; misses stay uncached so transient source failures
// do not stick.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens or creates the cache database at path, creating parent
// directories as needed. A ttl of zero keeps entries forever. Expired
// rows are purged best-effort on open.
func Open(path string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, ttl: ttl}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	s.Purge(context.Background())
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_fetched_at ON records(fetched_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the cached record for key, or nil, nil on a miss. Expired
// entries are deleted lazily and reported as misses.
func (s *Store) Get(ctx context.Context, key string) (*types.FetchedRecord, error) {
	var payload, fetchedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT record, fetched_at FROM records WHERE key = ?`, key,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}

	if s.ttl > 0 {
		t, parseErr := time.Parse(time.RFC3339Nano, fetchedAt)
		if parseErr != nil || time.Since(t) > s.ttl {
			s.db.ExecContext(ctx, `DELETE FROM records WHERE key = ?`, key)
			return nil, nil
		}
	}

	var rec types.FetchedRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decoding cached record: %w", err)
	}
	return &rec, nil
}

// Put stores a record under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, rec *types.FetchedRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO records (key, record, fetched_at) VALUES (?, ?, ?)`,
		key, string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Purge deletes entries older than the TTL and returns how many were
// removed. With a zero TTL it is a no-op.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-s.ttl).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
