// Package sqlite implements the MemoryLane store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/memorylane/memorylane-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Pragmas applied to every pooled connection through the DSN.
// foreign_keys is per-connection in SQLite, so a one-off Exec is not enough.
var connectionPragmas = []string{
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// Store provides SQLite-backed persistence for memories and the tag catalog.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Read-only connections skip journal_mode, which would need a write to change.
var readOnlyPragmas = []string{
	"query_only(1)",
	"busy_timeout(5000)",
}

// Open creates or opens the SQLite database at path and runs the schema.
// A Store is only returned once the schema has been applied.
func Open(path string, logger *slog.Logger) (*Store, error) {
	return open(path, logger, dsn(path, nil, connectionPragmas), true)
}

// OpenReadOnly opens an existing database without creating it, applying the
// schema or changing its journal mode. Writes through the returned Store fail.
func OpenReadOnly(path string, logger *slog.Logger) (*Store, error) {
	params := url.Values{"mode": {"ro"}}
	return open(path, logger, dsn(path, params, readOnlyPragmas), false)
}

func open(path string, logger *slog.Logger, dataSource string, applySchema bool) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", dataSource)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer; keep the pool small.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if applySchema {
		if _, err := db.Exec(schemaSQL); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec schema: %w", err)
		}
	}

	logger.Debug("sqlite store opened", "path", path, "read_only", !applySchema)

	return &Store{db: db, logger: logger}, nil
}

// dsn builds a modernc DSN that applies pragmas to every connection.
func dsn(path string, params url.Values, pragmas []string) string {
	if params == nil {
		params = url.Values{}
	}
	for _, p := range pragmas {
		params.Add("_pragma", p)
	}
	return "file:" + path + "?" + params.Encode()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction and commits if fn returns nil.
// Any error from fn, or a failed commit, leaves the database untouched.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
