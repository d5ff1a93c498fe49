package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"authkit/internal/events"
	"authkit/internal/model"
	"authkit/internal/repository"
	"authkit/internal/token"
)

// OAuthService implements the adapter semantics: it maps an exchanged
// provider identity onto the users/accounts/sessions tables.
type OAuthService interface {
	SignIn(ctx context.Context, provider string, profile *Profile, tok *oauth2.Token) (user *model.User, sessionToken string, err error)
}

type oauthService struct {
	userRepo    repository.UserRepository
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	publisher   events.EventPublisher
}

func NewOAuthService(
	userRepo repository.UserRepository,
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	publisher events.EventPublisher,
) OAuthService {
	return &oauthService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		publisher:   publisher,
	}
}

// SignIn resolves the linked user for a provider identity, creating the
// user and account rows on first sign-in, then persists a database session
// row. The caller still issues the stateless cookie; the row exists so the
// OAuth path remains revocable.
func (s *oauthService) SignIn(ctx context.Context, provider string, profile *Profile, tok *oauth2.Token) (*model.User, string, error) {
	user, err := s.resolveUser(ctx, provider, profile, tok)
	if err != nil {
		return nil, "", err
	}

	session := &model.Session{
		SessionToken: uuid.NewString(),
		UserID:       user.ID,
		Expires:      time.Now().Add(token.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, "", err
	}

	if err := s.publisher.PublishUserSignedIn(user.ID, provider); err != nil {
		slog.WarnContext(ctx, "failed to publish user.signed_in event", "error", err)
	}

	return user, session.SessionToken, nil
}

func (s *oauthService) resolveUser(ctx context.Context, provider string, profile *Profile, tok *oauth2.Token) (*model.User, error) {
	account, err := s.accountRepo.FindByProviderAccount(ctx, provider, profile.ID)
	if err == nil {
		return s.userRepo.FindByID(ctx, account.UserID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	user, err := s.findOrCreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, newAccount(user.ID, provider, profile.ID, tok)); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *oauthService) findOrCreateUser(ctx context.Context, profile *Profile) (*model.User, error) {
	if profile.Email != "" {
		user, err := s.userRepo.FindByEmail(ctx, profile.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	now := time.Now()
	user := &model.User{
		EmailVerified: &now,
	}
	if profile.Email != "" {
		email := profile.Email
		user.Email = &email
	}
	if profile.Name != "" {
		name := profile.Name
		user.Name = &name
	}
	if profile.Image != "" {
		image := profile.Image
		user.Image = &image
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = newID

	return user, nil
}

func newAccount(userID uuid.UUID, provider, providerAccountID string, tok *oauth2.Token) *model.Account {
	account := &model.Account{
		UserID:            userID,
		Type:              "oauth",
		Provider:          provider,
		ProviderAccountID: providerAccountID,
	}

	if tok == nil {
		return account
	}

	if tok.AccessToken != "" {
		access := tok.AccessToken
		account.AccessToken = &access
	}
	if tok.RefreshToken != "" {
		refresh := tok.RefreshToken
		account.RefreshToken = &refresh
	}
	if !tok.Expiry.IsZero() {
		expiresAt := tok.Expiry.Unix()
		account.ExpiresAt = &expiresAt
	}
	if tok.TokenType != "" {
		tokenType := tok.TokenType
		account.TokenType = &tokenType
	}

	return account
}
