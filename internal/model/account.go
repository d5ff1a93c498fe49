package model

import "github.com/google/uuid"

// Account is one linked external-provider identity. A user may hold several,
// but (provider, provider_account_id) is unique across the table.
type Account struct {
	ID                uuid.UUID `db:"id"`
	UserID            uuid.UUID `db:"user_id"`
	Type              string    `db:"type"`
	Provider          string    `db:"provider"`
	ProviderAccountID string    `db:"provider_account_id"`
	RefreshToken      *string   `db:"refresh_token"`
	AccessToken       *string   `db:"access_token"`
	ExpiresAt         *int64    `db:"expires_at"`
	TokenType         *string   `db:"token_type"`
	Scope             *string   `db:"scope"`
	IDToken           *string   `db:"id_token"`
}
