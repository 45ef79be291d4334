package migrations

// Column types differ per driver: TEXT/INTEGER/DATETIME for SQLite,
// BOOLEAN/TIMESTAMPTZ for PostgreSQL, VARCHAR keys and TIMESTAMP(6) for MySQL.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateGenerations, downCreateGenerations)
}

func upCreateGenerations(ctx context.Context, tx *sql.Tx) error {
	var ddl string
	switch dialect {
	case "postgres":
		ddl = `CREATE TABLE IF NOT EXISTS generations (
    id               TEXT PRIMARY KEY,
    source           TEXT NOT NULL,
    choice           TEXT NOT NULL DEFAULT '',
    biome            TEXT NOT NULL DEFAULT '',
    features         TEXT NOT NULL DEFAULT '',
    constriction     TEXT NOT NULL DEFAULT '',
    text_style       TEXT NOT NULL DEFAULT '',
    message          TEXT NOT NULL DEFAULT '',
    system_message   TEXT NOT NULL DEFAULT '',
    formatted_prompt TEXT NOT NULL,
    response         TEXT NOT NULL DEFAULT '',
    success          BOOLEAN NOT NULL,
    error            TEXT NOT NULL DEFAULT '',
    duration_ms      BIGINT NOT NULL DEFAULT 0,
    created_at       TIMESTAMPTZ NOT NULL
)`
	case "mysql":
		ddl = `CREATE TABLE IF NOT EXISTS generations (
    id               VARCHAR(36) PRIMARY KEY,
    source           VARCHAR(16) NOT NULL,
    choice           TEXT NOT NULL,
    biome            TEXT NOT NULL,
    features         TEXT NOT NULL,
    constriction     TEXT NOT NULL,
    text_style       TEXT NOT NULL,
    message          MEDIUMTEXT NOT NULL,
    system_message   MEDIUMTEXT NOT NULL,
    formatted_prompt MEDIUMTEXT NOT NULL,
    response         MEDIUMTEXT NOT NULL,
    success          BOOLEAN NOT NULL,
    error            TEXT NOT NULL,
    duration_ms      BIGINT NOT NULL DEFAULT 0,
    created_at       TIMESTAMP(6) NOT NULL
)`
	default: // sqlite3
		ddl = `CREATE TABLE IF NOT EXISTS generations (
    id               TEXT PRIMARY KEY,
    source           TEXT NOT NULL,
    choice           TEXT NOT NULL DEFAULT '',
    biome            TEXT NOT NULL DEFAULT '',
    features         TEXT NOT NULL DEFAULT '',
    constriction     TEXT NOT NULL DEFAULT '',
    text_style       TEXT NOT NULL DEFAULT '',
    message          TEXT NOT NULL DEFAULT '',
    system_message   TEXT NOT NULL DEFAULT '',
    formatted_prompt TEXT NOT NULL,
    response         TEXT NOT NULL DEFAULT '',
    success          INTEGER NOT NULL,
    error            TEXT NOT NULL DEFAULT '',
    duration_ms      INTEGER NOT NULL DEFAULT 0,
    created_at       DATETIME NOT NULL
)`
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create generations table: %w", err)
	}
	_, err := tx.ExecContext(ctx, `CREATE INDEX idx_generations_created_at ON generations (created_at)`)
	return err
}

func downCreateGenerations(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS generations`)
	return err
}
