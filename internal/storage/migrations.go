package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Migration represents a database schema migration
type Migration struct {
	Version     *semver.Version
	Description string
	Up          string // SQL to apply migration
	Down        string // SQL to rollback migration
}

// migrations contains all schema migrations in order
var migrations = []Migration{
	{
		Version:     semver.MustParse("1.0.0"),
		Description: "Initial schema with projects, files, chunks, embeddings, and FTS5 indexes",
		Up: `
-- Projects table
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	root_path TEXT NOT NULL UNIQUE,
	project_name TEXT DEFAULT '',
	project_version TEXT DEFAULT '',
	total_files INTEGER DEFAULT 0,
	total_chunks INTEGER DEFAULT 0,
	index_version TEXT NOT NULL,
	last_indexed_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Files table
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL,
	file_path TEXT NOT NULL,
	content_hash BLOB NOT NULL,
	mod_time TIMESTAMP NOT NULL,
	size_bytes INTEGER NOT NULL,
	decode_error TEXT,
	last_indexed_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
	UNIQUE(project_id, file_path)
);

CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
CREATE INDEX IF NOT EXISTS idx_files_hash ON files(content_hash);

-- Chunks table
CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	docstring TEXT NOT NULL DEFAULT '',
	definition TEXT NOT NULL,
	content_hash BLOB NOT NULL,
	token_count INTEGER NOT NULL,
	start_line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE,
	UNIQUE(file_id, start_line, end_line)
);

CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_id);
CREATE INDEX IF NOT EXISTS idx_chunks_kind ON chunks(kind);
CREATE INDEX IF NOT EXISTS idx_chunks_name ON chunks(name);
CREATE INDEX IF NOT EXISTS idx_chunks_hash ON chunks(content_hash);

-- Embeddings table
CREATE TABLE IF NOT EXISTS embeddings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chunk_id INTEGER NOT NULL UNIQUE,
	vector BLOB NOT NULL,
	dimension INTEGER NOT NULL,
	provider TEXT NOT NULL,
	model TEXT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (chunk_id) REFERENCES chunks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_embeddings_chunk ON embeddings(chunk_id);

-- FTS5 virtual table for chunk text search
CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
	name,
	docstring,
	definition,
	content=chunks,
	content_rowid=id
);

-- Triggers to keep FTS index in sync
CREATE TRIGGER IF NOT EXISTS chunks_fts_insert AFTER INSERT ON chunks BEGIN
	INSERT INTO chunks_fts(rowid, name, docstring, definition)
	VALUES (new.id, new.name, new.docstring, new.definition);
END;

CREATE TRIGGER IF NOT EXISTS chunks_fts_delete AFTER DELETE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, name, docstring, definition)
	VALUES ('delete', old.id, old.name, old.docstring, old.definition);
END;

CREATE TRIGGER IF NOT EXISTS chunks_fts_update AFTER UPDATE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, name, docstring, definition)
	VALUES ('delete', old.id, old.name, old.docstring, old.definition);
	INSERT INTO chunks_fts(rowid, name, docstring, definition)
	VALUES (new.id, new.name, new.docstring, new.definition);
END;

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`,
		Down: `
-- schema_migrations is owned by ApplyMigrations and survives rollback
DROP TRIGGER IF EXISTS chunks_fts_update;
DROP TRIGGER IF EXISTS chunks_fts_delete;
DROP TRIGGER IF EXISTS chunks_fts_insert;
DROP TABLE IF EXISTS chunks_fts;
DROP TABLE IF EXISTS embeddings;
DROP TABLE IF EXISTS chunks;
DROP TABLE IF EXISTS files;
DROP TABLE IF EXISTS projects;
`,
	},
}

// ApplyMigrations applies all pending migrations to the database
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	// Ensure schema_migrations table exists
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Sort migrations by version
	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version.LessThan(sorted[j].Version)
	})

	// Apply pending migrations
	for _, migration := range sorted {
		versionStr := migration.Version.String()
		if applied[versionStr] {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", versionStr, err)
		}

		if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", versionStr, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version) VALUES (?)", versionStr); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", versionStr, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", versionStr, err)
		}
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	if len(applied) == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	// Find the most recent applied migration
	var latest *Migration
	for i := range migrations {
		versionStr := migrations[i].Version.String()
		if !applied[versionStr] {
			continue
		}
		if latest == nil || migrations[i].Version.GreaterThan(latest.Version) {
			latest = &migrations[i]
		}
	}

	if latest == nil {
		return fmt.Errorf("no matching migration found for rollback")
	}

	versionStr := latest.Version.String()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rollback transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, latest.Down); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to rollback migration %s: %w", versionStr, err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schema_migrations WHERE version = ?", versionStr); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to remove migration record %s: %w", versionStr, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollback %s: %w", versionStr, err)
	}

	return nil
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		// Table may not exist yet
		return applied, nil
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// CurrentSchemaVersion returns the latest migration version
func CurrentSchemaVersion() string {
	if len(migrations) == 0 {
		return "0.0.0"
	}

	latest := migrations[0].Version
	for _, m := range migrations[1:] {
		if m.Version.GreaterThan(latest) {
			latest = m.Version
		}
	}

	return latest.String()
}
