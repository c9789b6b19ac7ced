package knowledge

import (
	"fmt"
)

// Migration represents a database schema migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// List of migrations in order
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema creation",
		SQL: `
CREATE TABLE IF NOT EXISTS kb_schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS kb_item (
    seq BIGSERIAL,
    id TEXT NOT NULL,
    account_id UUID NOT NULL,
    title TEXT NOT NULL,
    body TEXT NOT NULL DEFAULT '',
    tags TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    archived_at TIMESTAMPTZ,

    CONSTRAINT kb_item_pkey PRIMARY KEY (account_id, id)
);

CREATE INDEX IF NOT EXISTS kb_item_account_seq_idx ON kb_item(account_id, seq);
CREATE INDEX IF NOT EXISTS kb_item_archived_idx ON kb_item(account_id, archived_at);
CREATE INDEX IF NOT EXISTS kb_item_tags_idx ON kb_item USING GIN(tags);
`,
	},
	{
		Version:     2,
		Description: "Favorites and visit history",
		SQL: `
ALTER TABLE kb_item ADD COLUMN IF NOT EXISTS favorite BOOLEAN NOT NULL DEFAULT FALSE;
ALTER TABLE kb_item ADD COLUMN IF NOT EXISTS last_visited_at TIMESTAMPTZ;

CREATE INDEX IF NOT EXISTS kb_item_visited_idx ON kb_item(account_id, last_visited_at);
`,
	},
}

// runMigrations checks the current schema version and applies necessary migrations
func (p *PgStore) runMigrations() error {
	// This operation requires the DDL-capable connection
	db := p.ddlDB

	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT FROM pg_tables
			WHERE schemaname = 'public'
			AND tablename = 'kb_schema_version'
		)
	`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if schema version table exists: %w", err)
	}

	currentVersion := 0
	if exists {
		err = db.QueryRow(`
			SELECT COALESCE(MAX(version), 0)
			FROM kb_schema_version
		`).Scan(&currentVersion)
		if err != nil {
			return fmt.Errorf("failed to get current schema version: %w", err)
		}
	}

	for _, migration := range pendingMigrations(currentVersion) {
		p.logger.Info("Applying migration", "version", migration.Version, "description", migration.Description)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to start transaction for migration %d: %w", migration.Version, err)
		}

		if _, err = tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}

		_, err = tx.Exec(`
			INSERT INTO kb_schema_version (version, description)
			VALUES ($1, $2)
		`, migration.Version, migration.Description)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err = tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		p.logger.Info("Successfully applied migration", "version", migration.Version)
	}

	return nil
}

// pendingMigrations returns the migrations newer than the given version, in order
func pendingMigrations(currentVersion int) []Migration {
	var pending []Migration
	for _, migration := range migrations {
		if migration.Version > currentVersion {
			pending = append(pending, migration)
		}
	}
	return pending
}

// validateSchema checks if the database schema is compatible with the current version
func (p *PgStore) validateSchema() error {
	var version int
	err := p.ddlDB.QueryRow(`
		SELECT COALESCE(MAX(version), 0)
		FROM kb_schema_version
	`).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	if version < CurrentSchemaVersion {
		return fmt.Errorf("database schema version %d is older than required version %d",
			version, CurrentSchemaVersion)
	}

	rows, err := p.ddlDB.Query(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name = 'kb_item'
	`)
	if err != nil {
		return fmt.Errorf("failed to query table schema: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return fmt.Errorf("failed to scan column name: %w", err)
		}
		columns[column] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read table schema: %w", err)
	}

	requiredColumns := []string{
		"seq", "id", "account_id", "title", "body", "tags",
		"created_at", "updated_at", "archived_at", "last_visited_at", "favorite",
	}
	for _, col := range requiredColumns {
		if !columns[col] {
			return fmt.Errorf("required column '%s' missing from kb_item table", col)
		}
	}

	return nil
}
