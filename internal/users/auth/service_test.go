// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/platform/sec"
	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// fakeUserRepository is an in-memory UserRepository used by service tests.
type fakeUserRepository struct {
	users map[string]*auth.User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: map[string]*auth.User{}}
}

func (f *fakeUserRepository) Create(_ context.Context, user *auth.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepository) UpdateRefreshToken(_ context.Context, userID, token string) error {
	user, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.RefreshToken = token
	return nil
}

func (f *fakeUserRepository) RotateRefreshToken(_ context.Context, userID, previousToken, newToken string) error {
	user, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	if user.RefreshToken != previousToken {
		return apperr.TokenReuseDetected()
	}
	user.RefreshToken = newToken
	return nil
}

func (f *fakeUserRepository) ClearRefreshToken(_ context.Context, userID string) error {
	if user, ok := f.users[userID]; ok {
		user.RefreshToken = ""
	}
	return nil
}

func (f *fakeUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	user, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

// newTestService wires a Service against the fake repository and a real
// RS256 token service, so rotation is exercised with genuine JWTs.
func newTestService(t *testing.T) (*auth.Service, *fakeUserRepository, *sec.TokenService) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, "vidtube.test")
	repo := newFakeUserRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return auth.NewService(repo, tokens, tokens, logger), repo, tokens
}

// seedUser creates a stored identity with a hashed password.
func seedUser(t *testing.T, repo *fakeUserRepository, id, handle, email, password string) *auth.User {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	user := &auth.User{
		ID:           id,
		Username:     handle,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Test User",
	}
	require.NoError(t, repo.Create(context.Background(), user))

	return user
}

func TestLogin_Success(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "correct horse")

	// Mixed-case login resolves the same canonical handle.
	session, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "  Alice ",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.NotEqual(t, session.AccessToken, session.RefreshToken)

	// Exactly one durable write: the refresh token landed in storage.
	assert.Equal(t, session.RefreshToken, repo.users["u1"].RefreshToken)

	// The returned user is sanitized.
	assert.Empty(t, session.User.PasswordHash)
	assert.Empty(t, session.User.RefreshToken)
}

func TestLogin_ByEmail(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "correct horse")

	_, err := service.Login(context.Background(), auth.LoginInput{
		Login:    "ALICE@vidtube.app",
		Password: "correct horse",
	})
	assert.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "correct horse")

	// Wrong password.
	_, err := service.Login(context.Background(), auth.LoginInput{Login: "alice", Password: "wrong"})
	assert.True(t, apperr.IsCode(err, "INVALID_CREDENTIALS"))

	// Unknown identity gets the same generic failure.
	_, err = service.Login(context.Background(), auth.LoginInput{Login: "nobody", Password: "whatever"})
	assert.True(t, apperr.IsCode(err, "INVALID_CREDENTIALS"))
}

func TestRefresh_RotatesToken(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "correct horse")

	session, err := service.Login(context.Background(), auth.LoginInput{Login: "alice", Password: "correct horse"})
	require.NoError(t, err)

	rotated, err := service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, rotated.RefreshToken, repo.users["u1"].RefreshToken)
}

func TestRefresh_ReuseKillsSession(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "correct horse")

	session, err := service.Login(context.Background(), auth.LoginInput{Login: "alice", Password: "correct horse"})
	require.NoError(t, err)

	rotated, err := service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)

	// Replaying the rotated-away token is reuse: the whole session dies.
	_, err = service.Refresh(context.Background(), session.RefreshToken)
	assert.True(t, apperr.IsCode(err, "TOKEN_REUSE_DETECTED"))
	assert.Empty(t, repo.users["u1"].RefreshToken)

	// Even the legitimately rotated token is now dead.
	_, err = service.Refresh(context.Background(), rotated.RefreshToken)
	assert.True(t, apperr.IsCode(err, "TOKEN_REUSE_DETECTED"))
}

func TestRefresh_RejectsBadTokens(t *testing.T) {
	service, repo, tokens := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "correct horse")

	// Blank token means no credential was presented at all.
	_, err := service.Refresh(context.Background(), "   ")
	assert.True(t, apperr.IsCode(err, "UNAUTHENTICATED"))

	// Garbage fails signature verification.
	_, err = service.Refresh(context.Background(), "not-a-jwt")
	assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))

	// An access token must never pass as a refresh token.
	accessToken, err := tokens.Generate("u1", sec.KindAccess, auth.AccessTokenTTL)
	require.NoError(t, err)
	_, err = service.Refresh(context.Background(), accessToken)
	assert.True(t, apperr.IsCode(err, "INVALID_TOKEN"))
}

func TestRefresh_IdentityGone(t *testing.T) {
	service, _, tokens := newTestService(t)

	// Valid signature, but the subject no longer exists.
	orphanToken, err := tokens.Generate("ghost", sec.KindRefresh, auth.RefreshTokenTTL)
	require.NoError(t, err)

	_, err = service.Refresh(context.Background(), orphanToken)
	assert.True(t, apperr.IsNotFound(err))
}

func TestIssueTokens(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "correct horse")

	session, err := service.IssueTokens(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, session.RefreshToken, repo.users["u1"].RefreshToken)

	_, err = service.IssueTokens(context.Background(), "ghost")
	assert.True(t, apperr.IsNotFound(err))
}

func TestLogout_Idempotent(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "correct horse")

	_, err := service.Login(context.Background(), auth.LoginInput{Login: "alice", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), "u1"))
	assert.Empty(t, repo.users["u1"].RefreshToken)

	// Second logout on an already-dead session still succeeds.
	assert.NoError(t, service.Logout(context.Background(), "u1"))
}

func TestChangePassword(t *testing.T) {
	service, repo, _ := newTestService(t)
	seedUser(t, repo, "u1", "alice", "alice@vidtube.app", "old password")

	// Wrong current password is rejected.
	err := service.ChangePassword(context.Background(), "u1", "nope", "new password")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	// Correct current password rotates the hash.
	require.NoError(t, service.ChangePassword(context.Background(), "u1", "old password", "new password"))
	assert.True(t, sec.CheckPasswordHash("new password", repo.users["u1"].PasswordHash))

	_, err = service.Login(context.Background(), auth.LoginInput{Login: "alice", Password: "new password"})
	assert.NoError(t, err)
}
