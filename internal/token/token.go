package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authkit/internal/model"
)

// SessionTTL bounds both the JWT expiry and the database session rows
// created by the OAuth flow.
const SessionTTL = time.Hour * 24 * 30

// Manager signs and verifies the stateless session tokens carried in the
// session cookie.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// Issue signs a session token for user. The user id is copied into the
// custom "id" claim on issuance and survives re-signing untouched.
// sessionToken, when non-empty, ties the JWT to a database session row so
// sign-out can revoke it.
func (m *Manager) Issue(user *model.User, sessionToken string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"id":  user.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(SessionTTL).Unix(),
	}
	if user.Email != nil {
		claims["email"] = *user.Email
	}
	if user.Name != nil {
		claims["name"] = *user.Name
	}
	if user.Image != nil {
		claims["picture"] = *user.Image
	}
	if sessionToken != "" {
		claims["sid"] = sessionToken
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Refresh re-signs the claims with a fresh expiry, preserving the "id"
// claim and everything else as issued.
func (m *Manager) Refresh(claims jwt.MapClaims) (string, error) {
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(SessionTTL).Unix()

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) Verify(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
