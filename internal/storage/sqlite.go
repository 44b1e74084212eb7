package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrNotFound is returned when a requested item doesn't exist
	ErrNotFound = errors.New("not found")
)

// Options configures the SQLite connection.
type Options struct {
	// BusyTimeout bounds how long a writer waits on the database lock
	// before failing. Defaults to 5 seconds.
	BusyTimeout time.Duration
	// MmapSize is the memory-map size for reads in bytes. Defaults to 256 MiB.
	MmapSize int64
}

func (o *Options) withDefaults() Options {
	out := Options{BusyTimeout: 5 * time.Second, MmapSize: 256 << 20}
	if o == nil {
		return out
	}
	if o.BusyTimeout > 0 {
		out.BusyTimeout = o.BusyTimeout
	}
	if o.MmapSize > 0 {
		out.MmapSize = o.MmapSize
	}
	return out
}

// Store implements knowledge item persistence on SQLite with FTS5.
type Store struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with durability and concurrency
// settings: WAL journaling, enforced foreign keys, a bounded lock-wait
// timeout, and memory-mapped reads.
func openDatabase(dbPath string, opts Options) (*sql.DB, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", opts.BusyTimeout.Milliseconds()),
		fmt.Sprintf("PRAGMA mmap_size=%d", opts.MmapSize),
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	// SQLite allows many readers but a single writer; a one-connection
	// pool keeps every statement on the connection the pragmas ran on.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return db, nil
}

// Open opens (or creates) the database at dbPath, creating parent
// directories as needed, and applies any pending migrations.
func Open(dbPath string, opts *Options) (*Store, error) {
	db, err := openDatabase(dbPath, opts.withDefaults())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for schema-level operations (reset,
// version checks). Row access goes through the typed methods.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Reset drops and rebuilds the schema. Test/dev use only.
func (s *Store) Reset(ctx context.Context) error {
	return ResetSchema(ctx, s.db)
}

// BeginTx starts a new transaction.
func (s *Store) BeginTx(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx wraps a SQL transaction and exposes the same row operations as Store.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

func (t *Tx) querier() querier { return t.tx }

func (s *Store) querier() querier { return s.db }
