package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujal-pawar/legacy-note-api/internal/auth"
)

type testEnv struct {
	repo         *fakeUserRepo
	mailer       *recordingMailer
	jwtAuth      *auth.JWTAuthenticator
	auth         AuthUsecase
	verification VerificationUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newFakeUserRepo()
	recording := newRecordingMailer()
	jwtAuth := auth.NewJWTAuthenticator("test-secret", "legacynote", time.Hour)
	logger := zerolog.Nop()

	verification := NewVerificationUsecase(repo, recording, jwtAuth, &logger)
	authUC := NewAuthUsecase(repo, verification, jwtAuth, &logger)

	return &testEnv{
		repo:         repo,
		mailer:       recording,
		jwtAuth:      jwtAuth,
		auth:         authUC,
		verification: verification,
	}
}

func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()

	user, err := e.auth.Register(context.Background(), RegisterParams{
		Name:     name,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	return user.ID.Hex()
}

func (e *testEnv) registerVerified(t *testing.T, name, email, password string) string {
	t.Helper()

	id := e.register(t, name, email, password)
	require.NoError(t, e.repo.MarkEmailVerified(context.Background(), id))

	return id
}

func TestRegisterCreatesUnverifiedUserAndSendsCode(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(context.Background(), RegisterParams{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.EmailVerified)

	stored := env.repo.stored(user.ID.Hex())
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NotEmpty(t, stored.VerificationOTPHash)

	email, ok := env.mailer.lastOfKind("verification")
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", email.to)
	assert.Len(t, email.code, 6)
	assert.NotEqual(t, email.code, stored.VerificationOTPHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com", "correct horse")

	_, err := env.auth.Register(context.Background(), RegisterParams{
		Name:     "Imposter",
		Email:    "ada@example.com",
		Password: "something else",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "Ada", "ada@example.com", "correct horse")

	_, _, err := env.auth.Login(context.Background(), LoginParams{
		Email:    "ada@example.com",
		Password: "wrong horse",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.Login(context.Background(), LoginParams{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnverifiedResendsCode(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ada", "ada@example.com", "correct horse")
	before := env.mailer.countOfKind("verification")

	_, _, err := env.auth.Login(context.Background(), LoginParams{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	assert.Equal(t, before+1, env.mailer.countOfKind("verification"))
}

func TestLoginVerifiedIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	id := env.registerVerified(t, "Ada", "ada@example.com", "correct horse")

	token, user, err := env.auth.Login(context.Background(), LoginParams{
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, id, user.ID.Hex())

	claims, err := env.jwtAuth.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestLoginGoogleOnlyAccountHasNoPassword(t *testing.T) {
	env := newTestEnv(t)
	logger := zerolog.Nop()
	google := NewGoogleAuthUsecase(env.repo, &staticVerifier{
		user: googleUserFixture("sub-1", "ada@example.com", "Ada"),
	}, env.jwtAuth, &logger)

	_, _, err := google.SignIn(context.Background(), "credential")
	require.NoError(t, err)

	_, _, err = env.auth.Login(context.Background(), LoginParams{
		Email:    "ada@example.com",
		Password: "",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.GetUser(context.Background(), "64b0c0c0c0c0c0c0c0c0c0c0")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserOmitsPasswordHash(t *testing.T) {
	env := newTestEnv(t)
	id := env.registerVerified(t, "Ada", "ada@example.com", "correct horse")

	user, err := env.auth.GetUser(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
}
