package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateAccountsTable, downCreateAccountsTable)
}

func upCreateAccountsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE accounts (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	  type TEXT NOT NULL,
	  provider TEXT NOT NULL,
	  provider_account_id TEXT NOT NULL,
	  refresh_token TEXT,
	  access_token TEXT,
	  expires_at BIGINT,
	  token_type TEXT,
	  scope TEXT,
	  id_token TEXT,
	  UNIQUE (provider, provider_account_id)
	);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateAccountsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS accounts;`
	_, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	return nil
}
