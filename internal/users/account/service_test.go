// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package account_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmehra/vidtube/internal/media"
	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/users/account"
	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// fakeMediaStore records uploads and deletions, optionally failing uploads
// for specific file names.
type fakeMediaStore struct {
	uploaded []string        // asset IDs in upload order
	deleted  []string        // asset IDs in deletion order
	failOn   map[string]bool // file names whose upload fails
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{failOn: map[string]bool{}}
}

func (f *fakeMediaStore) Upload(_ context.Context, file media.FileUpload) (*media.Asset, error) {
	if f.failOn[file.Name] {
		return nil, apperr.Upload(errors.New("store rejected upload"))
	}
	assetID := "asset-" + file.Name
	f.uploaded = append(f.uploaded, assetID)
	return &media.Asset{
		RemoteURL: "https://cdn.vidtube.app/" + assetID,
		AssetID:   assetID,
	}, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, assetID string) error {
	f.deleted = append(f.deleted, assetID)
	return nil
}

// fakeAccountRepository is an in-memory AccountRepository with injectable
// failures for the saga tests.
type fakeAccountRepository struct {
	users             map[string]*auth.User
	createErr         error
	vanishAfterCreate bool // simulates a failed confirmation re-fetch
	updateAvatarErr   error
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{users: map[string]*auth.User{}}
}

func (f *fakeAccountRepository) Create(_ context.Context, user *auth.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeAccountRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	if f.vanishAfterCreate {
		return nil, apperr.NotFound("User")
	}
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeAccountRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeAccountRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeAccountRepository) UpdateDetails(_ context.Context, userID, displayName, email string) error {
	if user, ok := f.users[userID]; ok {
		user.DisplayName = displayName
		user.Email = email
	}
	return nil
}

func (f *fakeAccountRepository) UpdateAvatar(_ context.Context, userID, url, assetID string) error {
	if f.updateAvatarErr != nil {
		return f.updateAvatarErr
	}
	if user, ok := f.users[userID]; ok {
		user.AvatarURL, user.AvatarAssetID = url, assetID
	}
	return nil
}

func (f *fakeAccountRepository) UpdateCover(_ context.Context, userID, url, assetID string) error {
	if user, ok := f.users[userID]; ok {
		user.CoverURL, user.CoverAssetID = url, assetID
	}
	return nil
}

func newTestService(t *testing.T) (*account.Service, *fakeAccountRepository, *fakeMediaStore) {
	t.Helper()
	repo := newFakeAccountRepository()
	store := newFakeMediaStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return account.NewService(repo, store, logger), repo, store
}

func upload(name string) *media.FileUpload {
	return &media.FileUpload{
		Name:        name,
		ContentType: "image/png",
		Content:     strings.NewReader("fake image bytes"),
	}
}

func validInput() account.RegisterInput {
	return account.RegisterInput{
		FullName: "Alice Example",
		Username: "Alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	}
}

func TestRegister_Success(t *testing.T) {
	service, repo, store := newTestService(t)

	user, err := service.Register(context.Background(), validInput(), upload("avatar.png"), upload("cover.png"))
	require.NoError(t, err)

	// Stored under canonical forms.
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	// Both media slots are attached.
	assert.Equal(t, "https://cdn.vidtube.app/asset-avatar.png", user.AvatarURL)
	assert.Equal(t, "https://cdn.vidtube.app/asset-cover.png", user.CoverURL)

	// The returned user is sanitized.
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, user.RefreshToken)

	// Happy path deletes nothing.
	assert.Empty(t, store.deleted)
	assert.Len(t, repo.users, 1)
}

func TestRegister_CoverOptional(t *testing.T) {
	service, _, store := newTestService(t)

	user, err := service.Register(context.Background(), validInput(), upload("avatar.png"), nil)
	require.NoError(t, err)

	assert.Empty(t, user.CoverURL)
	assert.Empty(t, user.CoverAssetID)
	assert.NotEmpty(t, user.AvatarURL)
	assert.Len(t, store.uploaded, 1)
}

func TestRegister_CollectsAllViolations(t *testing.T) {
	service, _, store := newTestService(t)

	_, err := service.Register(context.Background(), account.RegisterInput{}, nil, nil)
	require.Error(t, err)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)

	// Every missing field is reported at once, including the avatar.
	fields := map[string]bool{}
	for _, detail := range appError.Details {
		fields[detail.Field] = true
	}
	for _, want := range []string{auth.FieldFullName, auth.FieldUsername, auth.FieldEmail, auth.FieldPassword, auth.FieldAvatar} {
		assert.True(t, fields[want], "missing violation for %s", want)
	}

	// Validation failures never reach the media store.
	assert.Empty(t, store.uploaded)
}

func TestRegister_CaseInsensitiveConflict(t *testing.T) {
	service, repo, store := newTestService(t)
	repo.users["u1"] = &auth.User{ID: "u1", Username: "alice", Email: "alice@example.com"}

	// "Alice" collides with the stored "alice".
	_, err := service.Register(context.Background(), validInput(), upload("avatar.png"), nil)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// Uniqueness is checked before any upload happens.
	assert.Empty(t, store.uploaded)
}

func TestRegister_CoverUploadFails_DeletesAvatar(t *testing.T) {
	service, repo, store := newTestService(t)
	store.failOn["cover.png"] = true

	_, err := service.Register(context.Background(), validInput(), upload("avatar.png"), upload("cover.png"))
	assert.True(t, apperr.IsCode(err, "UPLOAD_FAILED"))

	// The completed avatar upload was compensated; no identity exists.
	assert.Equal(t, []string{"asset-avatar.png"}, store.deleted)
	assert.Empty(t, repo.users)
}

func TestRegister_CreateFails_DeletesBothAssets(t *testing.T) {
	service, repo, store := newTestService(t)
	repo.createErr = errors.New("connection reset")

	_, err := service.Register(context.Background(), validInput(), upload("avatar.png"), upload("cover.png"))
	require.Error(t, err)
	assert.False(t, apperr.IsCode(err, "UPLOAD_FAILED"))

	// Reversal list is walked backwards: cover first, then avatar.
	assert.Equal(t, []string{"asset-cover.png", "asset-avatar.png"}, store.deleted)
}

func TestRegister_RefetchFails_StillCompensates(t *testing.T) {
	service, repo, store := newTestService(t)
	repo.vanishAfterCreate = true

	_, err := service.Register(context.Background(), validInput(), upload("avatar.png"), upload("cover.png"))
	assert.True(t, apperr.IsCode(err, "INTERNAL_ERROR"))

	assert.Equal(t, []string{"asset-cover.png", "asset-avatar.png"}, store.deleted)
}

func TestUpdateAvatar_DeletesSuperseded(t *testing.T) {
	service, repo, store := newTestService(t)
	repo.users["u1"] = &auth.User{
		ID:            "u1",
		Username:      "alice",
		AvatarURL:     "https://cdn.vidtube.app/old-avatar",
		AvatarAssetID: "old-avatar",
	}

	user, err := service.UpdateAvatar(context.Background(), "u1", upload("new-avatar.png"))
	require.NoError(t, err)

	assert.Equal(t, "asset-new-avatar.png", user.AvatarAssetID)
	assert.Equal(t, "asset-new-avatar.png", repo.users["u1"].AvatarAssetID)

	// The replaced asset is cleaned up after the swap lands.
	assert.Equal(t, []string{"old-avatar"}, store.deleted)
}

func TestUpdateAvatar_SwapFails_DeletesFreshUpload(t *testing.T) {
	service, repo, store := newTestService(t)
	repo.users["u1"] = &auth.User{ID: "u1", Username: "alice", AvatarAssetID: "old-avatar"}
	repo.updateAvatarErr = errors.New("deadlock detected")

	_, err := service.UpdateAvatar(context.Background(), "u1", upload("new-avatar.png"))
	require.Error(t, err)

	// The orphan is the new upload, never the still-referenced old asset.
	assert.Equal(t, []string{"asset-new-avatar.png"}, store.deleted)
	assert.Equal(t, "old-avatar", repo.users["u1"].AvatarAssetID)
}

func TestUpdateCover_FirstCoverHasNothingToDelete(t *testing.T) {
	service, repo, store := newTestService(t)
	repo.users["u1"] = &auth.User{ID: "u1", Username: "alice"}

	user, err := service.UpdateCover(context.Background(), "u1", upload("cover.png"))
	require.NoError(t, err)

	assert.Equal(t, "asset-cover.png", user.CoverAssetID)
	assert.Empty(t, store.deleted)
}

func TestUpdateDetails(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.users["u1"] = &auth.User{ID: "u1", Username: "alice", Email: "alice@example.com", DisplayName: "Alice"}
	repo.users["u2"] = &auth.User{ID: "u2", Username: "bob", Email: "bob@example.com"}

	// Taking another member's email is a conflict.
	_, err := service.UpdateDetails(context.Background(), "u1", "Alice E.", "BOB@example.com")
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// A fresh email lands canonically.
	user, err := service.UpdateDetails(context.Background(), "u1", "Alice E.", "New@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Alice E.", user.DisplayName)
}

func TestGetProfile_Sanitized(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.users["u1"] = &auth.User{ID: "u1", Username: "alice", PasswordHash: "hash", RefreshToken: "token"}

	user, err := service.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, user.RefreshToken)

	_, err = service.GetProfile(context.Background(), "ghost")
	assert.True(t, apperr.IsNotFound(err))
}
