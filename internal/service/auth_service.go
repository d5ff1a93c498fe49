package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"authkit/internal/events"
	"authkit/internal/model"
	"authkit/internal/repository"
	"authkit/internal/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
)

const verificationTokenTTL = time.Hour * 24

type AuthService interface {
	RegisterUser(ctx context.Context, name, email, password string) (*model.User, error)
	Authorize(ctx context.Context, email, password string) (*model.User, error)
	SignInWithCredentials(ctx context.Context, email, password string) (sessionJWT string, err error)
	SignOut(ctx context.Context, sessionToken string) error
	VerifyEmail(ctx context.Context, identifier, tokenValue string) error
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, imageURL string) error
}

type authService struct {
	userRepo         repository.UserRepository
	sessionRepo      repository.SessionRepository
	verificationRepo repository.VerificationTokenRepository
	tokens           *token.Manager
	publisher        events.EventPublisher
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	verificationRepo repository.VerificationTokenRepository,
	tokens *token.Manager,
	publisher events.EventPublisher,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		verificationRepo: verificationRepo,
		tokens:           tokens,
		publisher:        publisher,
	}
}

// RegisterUser hashes the password and inserts the row in one statement.
// Duplicate emails are not pre-checked; the unique index on users.email is
// the safety net and the violation propagates to the caller untouched.
func (s *authService) RegisterUser(ctx context.Context, name, email, password string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	hash := string(hashedPassword)
	user := &model.User{
		Name:         &name,
		Email:        &email,
		PasswordHash: &hash,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	user.ID = newID

	vt := &model.VerificationToken{
		Identifier: email,
		Token:      uuid.NewString(),
		Expires:    time.Now().Add(verificationTokenTTL),
	}
	if err := s.verificationRepo.Create(ctx, vt); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishUserRegistered(user, vt.Token); err != nil {
		slog.WarnContext(ctx, "failed to publish user.registered event", "error", err)
	}

	return user, nil
}

// Authorize validates a credential pair. Absent credentials, an unknown
// email, a user without a stored hash, and a bcrypt mismatch all collapse
// into ErrInvalidCredentials; store failures propagate as-is so callers can
// tell an outage apart from a bad password.
func (s *authService) Authorize(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) SignInWithCredentials(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authorize(ctx, email, password)
	if err != nil {
		return "", err
	}

	sessionJWT, err := s.tokens.Issue(user, "")
	if err != nil {
		return "", err
	}

	if err := s.publisher.PublishUserSignedIn(user.ID, "credentials"); err != nil {
		slog.WarnContext(ctx, "failed to publish user.signed_in event", "error", err)
	}

	return sessionJWT, nil
}

// SignOut revokes the database session row backing an OAuth sign-in.
// Credentials sign-ins carry no row, so an empty token is a no-op; the
// cookie itself is cleared at the handler.
func (s *authService) SignOut(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}
	return s.sessionRepo.Delete(ctx, sessionToken)
}

func (s *authService) VerifyEmail(ctx context.Context, identifier, tokenValue string) error {
	vt, err := s.verificationRepo.Consume(ctx, identifier, tokenValue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTokenInvalid
		}
		return err
	}

	if vt.Expires.Before(time.Now()) {
		return ErrTokenInvalid
	}

	return s.userRepo.MarkEmailVerified(ctx, identifier, time.Now())
}

func (s *authService) GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateAvatar(ctx context.Context, userID uuid.UUID, imageURL string) error {
	return s.userRepo.UpdateImage(ctx, userID, imageURL)
}
