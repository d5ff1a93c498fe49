package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"authkit/internal/model"
)

type VerificationTokenRepository interface {
	Create(ctx context.Context, vt *model.VerificationToken) error
	// Consume deletes the (identifier, token) pair and returns it. A missing
	// pair surfaces as sql.ErrNoRows.
	Consume(ctx context.Context, identifier, tokenValue string) (*model.VerificationToken, error)
}

type postgresVerificationTokenRepository struct {
	db *sqlx.DB
}

func NewPostgresVerificationTokenRepository(db *sqlx.DB) VerificationTokenRepository {
	return &postgresVerificationTokenRepository{db: db}
}

func (r *postgresVerificationTokenRepository) Create(ctx context.Context, vt *model.VerificationToken) error {
	query := `INSERT INTO verification_tokens (identifier, token, expires) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, vt.Identifier, vt.Token, vt.Expires)
	return err
}

func (r *postgresVerificationTokenRepository) Consume(ctx context.Context, identifier, tokenValue string) (*model.VerificationToken, error) {
	var vt model.VerificationToken
	query := `DELETE FROM verification_tokens WHERE identifier = $1 AND token = $2 RETURNING identifier, token, expires`
	err := r.db.GetContext(ctx, &vt, query, identifier, tokenValue)

	if err != nil {
		return nil, err
	}

	return &vt, nil
}
