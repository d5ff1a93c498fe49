package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is a database-backed session row. Only the OAuth flow persists
// these; credentials sign-in uses stateless JWT cookies and never reads
// this table.
type Session struct {
	ID           uuid.UUID `db:"id"`
	SessionToken string    `db:"session_token"`
	UserID       uuid.UUID `db:"user_id"`
	Expires      time.Time `db:"expires"`
}
