// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arjunmehra/vidtube/internal/media"
	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/platform/sec"
	"github.com/arjunmehra/vidtube/internal/platform/validate"
	"github.com/arjunmehra/vidtube/internal/users/auth"
	"github.com/arjunmehra/vidtube/pkg/username"
	"github.com/arjunmehra/vidtube/pkg/uuidv7"
)

// # Service Layer

// Service orchestrates account provisioning and profile maintenance.
//
// Registration is a saga: uploaded media that never gets attached to an
// identity row must be reclaimed, so every side effect lands on a reversal
// list before the next step runs.
type Service struct {
	accountRepository AccountRepository
	mediaStore        media.Store
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accountRepo AccountRepository,
	mediaStore media.Store,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		mediaStore:        mediaStore,
		logger:            logger,
	}
}

// reversal records one compensating deletion for a completed upload.
type reversal struct {
	label   string
	assetID string
}

// # Registration Saga

// RegisterInput holds the textual fields required to enroll a new member.
type RegisterInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

/*
Register provisions a brand-new identity with its media assets.

Description: Validates input, enforces case-insensitive uniqueness, uploads
the avatar (required) and cover (optional), then creates the identity row.
On any failure after an upload, the completed uploads are deleted in reverse
order — best effort, logged, never overriding the original error.

Parameters:
  - context: context.Context
  - input: RegisterInput
  - avatar: *media.FileUpload (required)
  - cover: *media.FileUpload (optional; empty refs when absent)

Returns:
  - *auth.User: The re-fetched, sanitized identity
  - err: ValidationError (all violations at once), Conflict, Upload, or
    internal failures
*/
func (service *Service) Register(context context.Context, input RegisterInput, avatar, cover *media.FileUpload) (*auth.User, error) {

	// ── 1. Validation (every violation reported together) ─────────────────
	canonicalHandle := username.Canonical(input.Username)
	canonicalEmail := username.CanonicalEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(auth.FieldFullName, input.FullName).
		MaxLen(auth.FieldFullName, input.FullName, auth.MaxDisplayNameLength).
		Required(auth.FieldUsername, input.Username).
		Required(auth.FieldEmail, input.Email).
		Required(auth.FieldPassword, input.Password).
		Custom(auth.FieldAvatar, avatar == nil, "Avatar image is required")

	if !username.IsBlank(input.Username) {
		validator.MinLen(auth.FieldUsername, canonicalHandle, auth.MinUsernameLength).
			Username(auth.FieldUsername, canonicalHandle)
	}
	if !username.IsBlank(input.Email) {
		validator.Email(auth.FieldEmail, canonicalEmail)
	}
	if !username.IsBlank(input.Password) {
		validator.MinLen(auth.FieldPassword, input.Password, auth.MinPasswordLength)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Uniqueness (case-insensitive via canonical forms) ──────────────
	if _, err := service.accountRepository.FindByUsername(context, canonicalHandle); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}
	if _, err := service.accountRepository.FindByEmail(context, canonicalEmail); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// ── 3. Media uploads (tracked for compensation) ───────────────────────
	var reversals []reversal

	avatarAsset, err := service.mediaStore.Upload(context, *avatar)
	if err != nil {
		return nil, err
	}
	reversals = append(reversals, reversal{label: "avatar", assetID: avatarAsset.AssetID})

	// Cover is optional: absence means empty references, not an error.
	coverAsset := &media.Asset{}
	if cover != nil {
		coverAsset, err = service.mediaStore.Upload(context, *cover)
		if err != nil {
			service.compensate(context, reversals)
			return nil, err
		}
		reversals = append(reversals, reversal{label: "cover", assetID: coverAsset.AssetID})
	}

	// ── 4. Identity creation ──────────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		service.compensate(context, reversals)
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	user := &auth.User{
		ID:            uuidv7.New(),
		Username:      canonicalHandle,
		Email:         canonicalEmail,
		PasswordHash:  hashedPassword,
		DisplayName:   input.FullName,
		AvatarURL:     avatarAsset.RemoteURL,
		AvatarAssetID: avatarAsset.AssetID,
		CoverURL:      coverAsset.RemoteURL,
		CoverAssetID:  coverAsset.AssetID,
	}

	if err := service.accountRepository.Create(context, user); err != nil {
		service.compensate(context, reversals)
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	// ── 5. Confirmation re-fetch ──────────────────────────────────────────
	// The row is read back with sensitive columns projected out; a miss here
	// means provisioning cannot be confirmed, so the saga still unwinds.
	created, err := service.accountRepository.FindByID(context, user.ID)
	if err != nil {
		service.compensate(context, reversals)
		return nil, apperr.Internal(fmt.Errorf("account_service_refetch_failed: %w", err))
	}

	service.logger.Info("user_registered",
		slog.String("user_id", created.ID),
		slog.String("username", created.Username),
	)

	return created.Sanitized(), nil
}

// compensate walks completed side effects in reverse, deleting each uploaded
// asset. Failures are logged and swallowed: compensation must never replace
// the error that triggered it.
func (service *Service) compensate(context context.Context, reversals []reversal) {
	for i := len(reversals) - 1; i >= 0; i-- {
		step := reversals[i]
		if err := service.mediaStore.Delete(context, step.assetID); err != nil {
			service.logger.Error("register_compensation_failed",
				slog.String("step", step.label),
				slog.String("asset_id", step.assetID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// # Profile Management

/*
GetProfile retrieves the sanitized identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile without credentials
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

/*
UpdateDetails modifies the display name and email of an account.

Description: Both fields are replaced together. A changed email re-enters
the case-insensitive uniqueness check.

Parameters:
  - context: context.Context
  - userID: string
  - fullName: string
  - email: string

Returns:
  - *auth.User: The updated, sanitized profile
  - error: ValidationError, Conflict, NotFound, or storage failures
*/
func (service *Service) UpdateDetails(context context.Context, userID, fullName, email string) (*auth.User, error) {
	canonicalEmail := username.CanonicalEmail(email)

	validator := &validate.Validator{}
	validator.Required(auth.FieldFullName, fullName).
		MaxLen(auth.FieldFullName, fullName, auth.MaxDisplayNameLength).
		Required(auth.FieldEmail, email)
	if !username.IsBlank(email) {
		validator.Email(auth.FieldEmail, canonicalEmail)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	// Only a changed email needs the uniqueness check.
	if canonicalEmail != user.Email {
		if _, err := service.accountRepository.FindByEmail(context, canonicalEmail); err == nil {
			return nil, apperr.Conflict("Email is already registered")
		}
	}

	if err := service.accountRepository.UpdateDetails(context, userID, fullName, canonicalEmail); err != nil {
		return nil, fmt.Errorf("account_service_update_details_failed: %w", err)
	}

	service.logger.Info("user_details_updated", slog.String("user_id", userID))

	user.DisplayName = fullName
	user.Email = canonicalEmail
	return user.Sanitized(), nil
}

// # Media Replacement

/*
UpdateAvatar replaces the user's avatar image.

Description: Upload-first — the new asset must exist before the reference
swap. After a successful swap the superseded asset is deleted best-effort.

Parameters:
  - context: context.Context
  - userID: string
  - file: *media.FileUpload

Returns:
  - *auth.User: The updated, sanitized profile
  - error: ValidationError, NotFound, Upload, or storage failures
*/
func (service *Service) UpdateAvatar(context context.Context, userID string, file *media.FileUpload) (*auth.User, error) {
	return service.replaceImage(context, userID, file, auth.FieldAvatar)
}

/*
UpdateCover replaces the user's cover image.

Description: Same upload-first discipline as UpdateAvatar. A member who
registered without a cover simply gains one here; there is nothing old to
delete in that case.

Parameters:
  - context: context.Context
  - userID: string
  - file: *media.FileUpload

Returns:
  - *auth.User: The updated, sanitized profile
  - error: ValidationError, NotFound, Upload, or storage failures
*/
func (service *Service) UpdateCover(context context.Context, userID string, file *media.FileUpload) (*auth.User, error) {
	return service.replaceImage(context, userID, file, auth.FieldCover)
}

// replaceImage runs the shared upload-swap-cleanup sequence for either
// media slot.
func (service *Service) replaceImage(context context.Context, userID string, file *media.FileUpload, slot string) (*auth.User, error) {
	if file == nil {
		return nil, validate.RequiredError(slot, "Image file is required")
	}

	user, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	asset, err := service.mediaStore.Upload(context, *file)
	if err != nil {
		return nil, err
	}

	var supersededAssetID string
	switch slot {
	case auth.FieldAvatar:
		supersededAssetID = user.AvatarAssetID
		err = service.accountRepository.UpdateAvatar(context, userID, asset.RemoteURL, asset.AssetID)
		user.AvatarURL, user.AvatarAssetID = asset.RemoteURL, asset.AssetID
	default:
		supersededAssetID = user.CoverAssetID
		err = service.accountRepository.UpdateCover(context, userID, asset.RemoteURL, asset.AssetID)
		user.CoverURL, user.CoverAssetID = asset.RemoteURL, asset.AssetID
	}

	if err != nil {
		// The swap never landed, so the fresh upload is the orphan.
		service.compensate(context, []reversal{{label: slot, assetID: asset.AssetID}})
		return nil, fmt.Errorf("account_service_swap_%s_failed: %w", slot, err)
	}

	// The old asset is now unreachable; deletion is best effort.
	if supersededAssetID != "" {
		if err := service.mediaStore.Delete(context, supersededAssetID); err != nil {
			service.logger.Warn("superseded_asset_delete_failed",
				slog.String("slot", slot),
				slog.String("asset_id", supersededAssetID),
				slog.String("error", err.Error()),
			)
		}
	}

	service.logger.Info("user_media_updated",
		slog.String("user_id", userID),
		slog.String("slot", slot),
	)

	return user.Sanitized(), nil
}
