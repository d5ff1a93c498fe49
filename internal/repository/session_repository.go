package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"authkit/internal/model"
)

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	FindByToken(ctx context.Context, sessionToken string) (*model.Session, error)
	Delete(ctx context.Context, sessionToken string) error
}

type postgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `INSERT INTO sessions (session_token, user_id, expires) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, session.SessionToken, session.UserID, session.Expires)
	return err
}

func (r *postgresSessionRepository) FindByToken(ctx context.Context, sessionToken string) (*model.Session, error) {
	var session model.Session
	query := `SELECT id, session_token, user_id, expires FROM sessions WHERE session_token = $1`
	err := r.db.GetContext(ctx, &session, query, sessionToken)

	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *postgresSessionRepository) Delete(ctx context.Context, sessionToken string) error {
	query := `DELETE FROM sessions WHERE session_token = $1`
	_, err := r.db.ExecContext(ctx, query, sessionToken)
	return err
}
