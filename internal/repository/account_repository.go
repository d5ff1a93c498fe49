package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"authkit/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (*model.Account, error)
}

type postgresAccountRepository struct {
	db *sqlx.DB
}

func NewPostgresAccountRepository(db *sqlx.DB) AccountRepository {
	return &postgresAccountRepository{db: db}
}

func (r *postgresAccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `INSERT INTO accounts (user_id, type, provider, provider_account_id, refresh_token, access_token, expires_at, token_type, scope, id_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		account.UserID, account.Type, account.Provider, account.ProviderAccountID,
		account.RefreshToken, account.AccessToken, account.ExpiresAt,
		account.TokenType, account.Scope, account.IDToken,
	)
	return err
}

func (r *postgresAccountRepository) FindByProviderAccount(ctx context.Context, provider, providerAccountID string) (*model.Account, error) {
	var account model.Account
	query := `SELECT id, user_id, type, provider, provider_account_id, refresh_token, access_token, expires_at, token_type, scope, id_token
		FROM accounts WHERE provider = $1 AND provider_account_id = $2`
	err := r.db.GetContext(ctx, &account, query, provider, providerAccountID)

	if err != nil {
		return nil, err
	}

	return &account, nil
}
