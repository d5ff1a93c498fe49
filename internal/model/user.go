package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a row in the users table. Credentials users carry a password hash;
// users created by a social sign-in may have neither a hash nor a name.
type User struct {
	ID            uuid.UUID  `db:"id"`
	Name          *string    `db:"name"`
	Email         *string    `db:"email"`
	EmailVerified *time.Time `db:"email_verified"`
	Image         *string    `db:"image"`
	PasswordHash  *string    `db:"password_hash"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}
