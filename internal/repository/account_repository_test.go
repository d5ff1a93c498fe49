package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"authkit/internal/model"
	repo "authkit/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestPostgresAccountRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresAccountRepository(sqlxDB)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO accounts (user_id, type, provider, provider_account_id, refresh_token, access_token, expires_at, token_type, scope, id_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)).
		WithArgs(sqlmock.AnyArg(), "oauth", "github", "12345", nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	access := "gho_token"
	err = r.Create(context.Background(), &model.Account{
		UserID:            uuid.New(),
		Type:              "oauth",
		Provider:          "github",
		ProviderAccountID: "12345",
		AccessToken:       &access,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAccountRepository_FindByProviderAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresAccountRepository(sqlxDB)

	userID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "provider", "provider_account_id"}).
		AddRow(uuid.New(), userID, "oauth", "github", "12345")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, type, provider, provider_account_id, refresh_token, access_token, expires_at, token_type, scope, id_token
		FROM accounts WHERE provider = $1 AND provider_account_id = $2`)).
		WithArgs("github", "12345").WillReturnRows(rows)

	a, err := r.FindByProviderAccount(context.Background(), "github", "12345")
	require.NoError(t, err)
	require.Equal(t, userID, a.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAccountRepository_FindByProviderAccount_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresAccountRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, type, provider, provider_account_id`)).
		WithArgs("google", "nobody").WillReturnError(sql.ErrNoRows)

	_, err = r.FindByProviderAccount(context.Background(), "google", "nobody")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
