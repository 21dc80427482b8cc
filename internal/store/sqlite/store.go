// Package sqlite implements the storage gateway over a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/leadgrid/harvester/internal/harvest"
)

const schema = `
CREATE TABLE IF NOT EXISTS discovered_urls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	place_id TEXT NOT NULL,
	url TEXT NOT NULL,
	url_type TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'NEW',
	updated_at INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS emails (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	place_id TEXT NOT NULL,
	email TEXT NOT NULL,
	source TEXT NOT NULL,
	UNIQUE(place_id, email)
);
`

// Store implements harvest.Store against a SQLite database file shared with
// the other pipeline stages.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to the database at path and pings it to ensure it's alive.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect sqlite %q: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.Error("Failed to close sqlite after ping failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Init creates the tables this stage touches if they do not exist yet. The
// upstream stages normally create them first; this keeps a fresh database
// usable and test setup cheap.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// FetchPending returns NEW discovered URLs in creation order.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]harvest.DiscoveredURL, error) {
	query := `SELECT id, place_id, url, url_type, status, updated_at
		FROM discovered_urls WHERE status = ? ORDER BY id`
	args := []any{harvest.StatusNew}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var urls []harvest.DiscoveredURL
	if err := s.db.SelectContext(ctx, &urls, query, args...); err != nil {
		return nil, fmt.Errorf("select pending urls: %w", err)
	}
	return urls, nil
}

// Lock transitions a URL to PROCESSING.
func (s *Store) Lock(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id, harvest.StatusProcessing)
}

// Finalize sets a terminal status. Re-running the same update is a no-op
// from the caller's perspective.
func (s *Store) Finalize(ctx context.Context, id int64, status harvest.URLStatus) error {
	return s.setStatus(ctx, id, status)
}

func (s *Store) setStatus(ctx context.Context, id int64, status harvest.URLStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE discovered_urls SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("update url %d to %s: %w", id, status, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update url %d to %s: %w", id, status, sql.ErrNoRows)
	}
	return nil
}

// SaveEmail inserts one extracted email; duplicate (place, email) pairs are
// silently ignored.
func (s *Store) SaveEmail(ctx context.Context, placeID, email, source string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO emails (place_id, email, source) VALUES (?, ?, ?)`,
		placeID, email, source,
	)
	if err != nil {
		return fmt.Errorf("insert email for place %s: %w", placeID, err)
	}
	return nil
}

// Close shuts down the connection pool.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}
