package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateVerificationTokensTable, downCreateVerificationTokensTable)
}

func upCreateVerificationTokensTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE verification_tokens (
	  identifier TEXT NOT NULL,
	  token TEXT NOT NULL,
	  expires TIMESTAMP WITH TIME ZONE NOT NULL,
	  UNIQUE (identifier, token)
	);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateVerificationTokensTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS verification_tokens;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
