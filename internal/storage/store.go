package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteKV implements KV backed by the kv table of a SQLite database.
type SQLiteKV struct {
	db *sql.DB

	// Prepared statements
	getValue    *sql.Stmt
	upsertValue *sql.Stmt
	deleteValue *sql.Stmt

	ownsDB bool
}

// OpenSQLite opens (creating if needed) the database file at path, runs
// migrations and returns a ready store that closes the database on Close.
func OpenSQLite(ctx context.Context, path string) (*SQLiteKV, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := NewMigrationRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s, err := NewSQLiteKV(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// NewSQLiteKV creates a SQLiteKV from an already-opened and migrated database.
func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	s := &SQLiteKV{db: db}
	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteKV) prepareStatements() error {
	var err error

	s.getValue, err = s.db.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	s.upsertValue, err = s.db.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.deleteValue, err = s.db.Prepare(`DELETE FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	return nil
}

// Get returns the stored value for key.
func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.getValue.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, &Error{Op: "get", Key: key, Err: err}
	}
	return value, true, nil
}

// Set replaces the value for key in a single statement.
func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.upsertValue.ExecContext(ctx, key, value, ts); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	if _, err := s.deleteValue.ExecContext(ctx, key); err != nil {
		return &Error{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Close releases the prepared statements. The *sql.DB is closed only when
// the store was created by OpenSQLite.
func (s *SQLiteKV) Close() error {
	stmts := []*sql.Stmt{s.getValue, s.upsertValue, s.deleteValue}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
