package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one schema step, applied inside its own transaction.
type migration struct {
	version int
	name    string
	up      func(ctx context.Context, tx *sql.Tx) error
}

// schema lists every migration in version order.
var schema = []migration{
	{version: 1, name: "kv_store", up: migrateV001},
}

// MigrationRunner brings a SQLite database up to the current schema.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration
}

// NewMigrationRunner creates a MigrationRunner for db.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{db: db, migrations: schema}
}

// Run switches the database to WAL mode and applies pending migrations in
// order. It is safe to call on an up-to-date database.
func (r *MigrationRunner) Run(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}

	pending, err := r.pending(ctx)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := r.apply(ctx, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

// pending returns the migrations not yet recorded in schema_migrations.
func (r *MigrationRunner) pending(ctx context.Context) ([]migration, error) {
	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	var out []migration
	for _, m := range r.migrations {
		if !applied[m.version] {
			out = append(out, m)
		}
	}
	return out, nil
}

// Version reports the highest applied migration, 0 on a fresh database.
func (r *MigrationRunner) Version(ctx context.Context) (int, error) {
	applied, err := r.applied(ctx)
	if err != nil {
		return 0, err
	}
	v := 0
	for version := range applied {
		if version > v {
			v = version
		}
	}
	return v, nil
}

// applied loads the recorded versions, creating the bookkeeping table
// first so a fresh database reads as empty.
func (r *MigrationRunner) applied(ctx context.Context) (map[int]bool, error) {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (r *MigrationRunner) apply(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.up(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.version, m.name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}
