package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/appcache/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

const tableName = "App"

// Driver names accepted by WithDriver.
const (
	DriverCGo  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// Clock supplies the current time. The store only uses its UTC date.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// queryer is satisfied by both *sql.DB and *sql.Tx, so helpers can run
// inside or outside the upsert transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the application cache.
//
// All methods are safe for concurrent use; they are serialized internally
// because the store holds a single connection.
type Store struct {
	mu        sync.Mutex
	db        *sql.DB
	registry  *schema.Registry
	freshDays int
	clock     Clock
	logger    *slog.Logger
	driver    string
}

// Option configures a Store at Open.
type Option func(*Store)

// WithFreshDays sets the default freshness window for Upsert.
//
// Default: 0 (any write on or after the stored day overwrites)
func WithFreshDays(days int) Option {
	return func(s *Store) {
		s.freshDays = days
	}
}

// WithClock replaces the wall clock. Used by tests to cross freshness windows.
func WithClock(c Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithLogger sets the logger for attribute outcomes and schema changes.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithDriver selects the database/sql driver (DriverCGo or DriverPure).
func WithDriver(name string) Option {
	return func(s *Store) {
		s.driver = name
	}
}

// Open creates or opens the cache database at path, creates the App table if
// it does not exist and discovers the dynamic columns already present.
//
// The returned Store must be released with Close.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		clock:  systemClock{},
		logger: slog.Default(),
		driver: DriverCGo,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.freshDays < 0 {
		return nil, fmt.Errorf("fresh days must be >= 0, got %d", s.freshDays)
	}
	if s.driver != DriverCGo && s.driver != DriverPure {
		return nil, fmt.Errorf("unknown sqlite driver %q", s.driver)
	}

	db, err := sql.Open(s.driver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time; ALTER TABLE in particular
	// must not interleave with other statements.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	s.db = db
	if err := s.bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.refresh(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection. Calling Close more than once is a
// no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - statements that alter App bypass the registry.
func (s *Store) DB() *sql.DB {
	return s.db
}

// FreshDays returns the default freshness window.
func (s *Store) FreshDays() int {
	return s.freshDays
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// bootstrap creates the App table when it is absent.
func (s *Store) bootstrap(ctx context.Context) error {
	exists, err := tableExists(ctx, s.db, tableName)
	if err != nil {
		return fmt.Errorf("probe table: %w", err)
	}
	if exists {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	s.logger.Info("created table", "table", tableName)
	return nil
}

func tableExists(ctx context.Context, q queryer, name string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Refresh rebuilds the attribute registry from the table structure. Call it
// after another process may have added columns.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx, s.db)
}

// refresh is the single path that replaces s.registry.
func (s *Store) refresh(ctx context.Context, q queryer) error {
	rows, err := q.QueryContext(ctx,
		"SELECT cid, name FROM pragma_table_info(?) ORDER BY cid", tableName)
	if err != nil {
		return fmt.Errorf("read table info: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var c schema.Column
		if err := rows.Scan(&c.Position, &c.Name); err != nil {
			return fmt.Errorf("scan table info: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info: %w", err)
	}

	s.registry = schema.Discover(cols)
	return nil
}

// Attributes returns the known attributes of a namespace in ordinal order.
func (s *Store) Attributes(ns schema.Namespace) []schema.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Entries(ns)
}
