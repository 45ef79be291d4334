package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upAddGenerationsSourceIndex, downAddGenerationsSourceIndex)
}

// Stats and history filters group by source.
func upAddGenerationsSourceIndex(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `CREATE INDEX idx_generations_source ON generations (source, success)`)
	return err
}

func downAddGenerationsSourceIndex(ctx context.Context, tx *sql.Tx) error {
	stmt := `DROP INDEX IF EXISTS idx_generations_source`
	if dialect == "mysql" {
		stmt = `ALTER TABLE generations DROP INDEX idx_generations_source`
	}
	_, err := tx.ExecContext(ctx, stmt)
	return err
}
