package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authkit/internal/model"
	"authkit/internal/service"
	"authkit/internal/token"
)

type fakeUserRepo struct {
	byEmail   map[string]*model.User
	byID      map[uuid.UUID]*model.User
	createErr error
	findErr   error
	verified  map[string]time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:  map[string]*model.User{},
		byID:     map[uuid.UUID]*model.User{},
		verified: map[string]time.Time{},
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	id := uuid.New()
	user.ID = id
	if user.Email != nil {
		f.byEmail[*user.Email] = user
	}
	f.byID[id] = user
	return id, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) MarkEmailVerified(_ context.Context, email string, at time.Time) error {
	f.verified[email] = at
	return nil
}

func (f *fakeUserRepo) UpdateImage(_ context.Context, id uuid.UUID, image string) error {
	if user, ok := f.byID[id]; ok {
		user.Image = &image
	}
	return nil
}

type fakeSessionRepo struct {
	byToken map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byToken: map[string]*model.Session{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *model.Session) error {
	f.byToken[session.SessionToken] = session
	return nil
}

func (f *fakeSessionRepo) FindByToken(_ context.Context, sessionToken string) (*model.Session, error) {
	session, ok := f.byToken[sessionToken]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return session, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, sessionToken string) error {
	delete(f.byToken, sessionToken)
	return nil
}

type fakeVerificationRepo struct {
	tokens map[string]*model.VerificationToken
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{tokens: map[string]*model.VerificationToken{}}
}

func (f *fakeVerificationRepo) Create(_ context.Context, vt *model.VerificationToken) error {
	f.tokens[vt.Identifier+"/"+vt.Token] = vt
	return nil
}

func (f *fakeVerificationRepo) Consume(_ context.Context, identifier, tokenValue string) (*model.VerificationToken, error) {
	key := identifier + "/" + tokenValue
	vt, ok := f.tokens[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	delete(f.tokens, key)
	return vt, nil
}

type fakePublisher struct {
	registered []string
	signedIn   []string
	err        error
}

func (f *fakePublisher) PublishUserRegistered(user *model.User, verificationToken string) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, verificationToken)
	return nil
}

func (f *fakePublisher) PublishUserSignedIn(userID uuid.UUID, provider string) error {
	if f.err != nil {
		return f.err
	}
	f.signedIn = append(f.signedIn, provider)
	return nil
}

func newAuthService(users *fakeUserRepo) (service.AuthService, *fakeSessionRepo, *fakeVerificationRepo, *fakePublisher) {
	sessions := newFakeSessionRepo()
	verifications := newFakeVerificationRepo()
	publisher := &fakePublisher{}
	svc := service.NewAuthService(users, sessions, verifications, token.NewManager("secret"), publisher)
	return svc, sessions, verifications, publisher
}

func seedUser(t *testing.T, users *fakeUserRepo, email, password string) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashed)
	user := &model.User{Email: &email, PasswordHash: &hash}
	_, err = users.Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func TestAuthorize_CorrectPassword(t *testing.T) {
	users := newFakeUserRepo()
	seeded := seedUser(t, users, "a@b.com", "password123")
	svc, _, _, _ := newAuthService(users)

	user, err := svc.Authorize(context.Background(), "a@b.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
}

func TestAuthorize_WrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "a@b.com", "password123")
	svc, _, _, _ := newAuthService(users)

	_, err := svc.Authorize(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthorize_UnknownEmail(t *testing.T) {
	svc, _, _, _ := newAuthService(newFakeUserRepo())

	_, err := svc.Authorize(context.Background(), "nobody@b.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthorize_UserWithoutHash(t *testing.T) {
	users := newFakeUserRepo()
	email := "social@b.com"
	_, err := users.Create(context.Background(), &model.User{Email: &email})
	require.NoError(t, err)
	svc, _, _, _ := newAuthService(users)

	_, err = svc.Authorize(context.Background(), email, "anything")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthorize_AbsentCredentials(t *testing.T) {
	svc, _, _, _ := newAuthService(newFakeUserRepo())

	_, err := svc.Authorize(context.Background(), "", "")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestAuthorize_StoreErrorIsNotInvalidCredentials(t *testing.T) {
	users := newFakeUserRepo()
	users.findErr = errors.New("connection refused")
	svc, _, _, _ := newAuthService(users)

	_, err := svc.Authorize(context.Background(), "a@b.com", "password123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRegisterUser_StoresHashNotPlaintext(t *testing.T) {
	users := newFakeUserRepo()
	svc, _, verifications, publisher := newAuthService(users)

	user, err := svc.RegisterUser(context.Background(), "Name", "new@b.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "password123", *user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("password123")))

	// a verification token was issued and published
	assert.Len(t, verifications.tokens, 1)
	assert.Len(t, publisher.registered, 1)
}

func TestRegisterUser_PublishFailureDoesNotFailRegistration(t *testing.T) {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	verifications := newFakeVerificationRepo()
	publisher := &fakePublisher{err: errors.New("nats down")}
	svc := service.NewAuthService(users, sessions, verifications, token.NewManager("secret"), publisher)

	_, err := svc.RegisterUser(context.Background(), "Name", "new@b.com", "password123")
	assert.NoError(t, err)
}

func TestSignInWithCredentials_IssuesVerifiableToken(t *testing.T) {
	users := newFakeUserRepo()
	seeded := seedUser(t, users, "a@b.com", "password123")
	svc, _, _, publisher := newAuthService(users)

	signed, err := svc.SignInWithCredentials(context.Background(), "a@b.com", "password123")
	require.NoError(t, err)

	claims, err := token.NewManager("secret").Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID.String(), claims["id"])
	assert.Equal(t, []string{"credentials"}, publisher.signedIn)
}

func TestSignOut_DeletesSessionRow(t *testing.T) {
	users := newFakeUserRepo()
	svc, sessions, _, _ := newAuthService(users)

	session := &model.Session{SessionToken: "tok", UserID: uuid.New(), Expires: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Create(context.Background(), session))

	require.NoError(t, svc.SignOut(context.Background(), "tok"))
	_, err := sessions.FindByToken(context.Background(), "tok")
	assert.Error(t, err)
}

func TestSignOut_EmptyTokenIsNoop(t *testing.T) {
	svc, _, _, _ := newAuthService(newFakeUserRepo())
	assert.NoError(t, svc.SignOut(context.Background(), ""))
}

func TestVerifyEmail(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "a@b.com", "password123")
	svc, _, verifications, _ := newAuthService(users)

	vt := &model.VerificationToken{Identifier: "a@b.com", Token: "tok", Expires: time.Now().Add(time.Hour)}
	require.NoError(t, verifications.Create(context.Background(), vt))

	require.NoError(t, svc.VerifyEmail(context.Background(), "a@b.com", "tok"))
	assert.Contains(t, users.verified, "a@b.com")

	// consumed: second attempt fails
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "a@b.com", "tok"), service.ErrTokenInvalid)
}

func TestVerifyEmail_Expired(t *testing.T) {
	users := newFakeUserRepo()
	svc, _, verifications, _ := newAuthService(users)

	vt := &model.VerificationToken{Identifier: "a@b.com", Token: "tok", Expires: time.Now().Add(-time.Hour)}
	require.NoError(t, verifications.Create(context.Background(), vt))

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "a@b.com", "tok"), service.ErrTokenInvalid)
}
