// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/platform/sec"
	"github.com/arjunmehra/vidtube/pkg/username"
)

// # Contracts & Types

// TokenProvider defines the contract for minting session tokens.
type TokenProvider interface {
	// Generate creates a signed JWT of the given kind for the user.
	//
	// # Parameters
	//   - userID: The ID of the identity, embedded as the token subject.
	//   - kind: Access or refresh.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	Generate(userID string, kind sec.TokenKind, timeToLive time.Duration) (string, error)
}

// TokenVerifier defines the contract for validating refresh tokens.
type TokenVerifier interface {
	// Verify checks signature, expiry, and kind, failing closed on any mismatch.
	Verify(tokenStr string, kind sec.TokenKind) (*sec.SessionClaims, error)
}

// Service implements the session lifecycle use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to credential checks,
// token issuance, or rotation logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	tokenVerifier  TokenVerifier
	logger         *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	tokenProv TokenProvider,
	tokenVerif TokenVerifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		tokenVerifier:  tokenVerif,
		logger:         logger,
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Can be Username or Email
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Resolves the identity by canonical username or email, performs
constant-time password comparison, and establishes a new session by storing
the rotated refresh token.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers with sanitized user
  - err: InvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// Flexible login: look up by canonical username, then canonical email.
	user, err := service.userRepository.FindByUsername(context, username.Canonical(input.Login))
	if err != nil {
		user, err = service.userRepository.FindByEmail(context, username.CanonicalEmail(input.Login))
	}

	// If (err != nil) the identity does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.InvalidCredentials()
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	session, err := service.issueSessionTokens(context, user)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))

	return session, nil
}

/*
IssueTokens establishes a session for an already-verified identity.

Description: Used when credential verification happened elsewhere (e.g.
directly after registration). Performs exactly one durable write: storing
the new refresh token.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *LoginSession: Fresh token pair with sanitized user
  - err: NotFound if the identity is absent, or internal failures
*/
func (service *Service) IssueTokens(context context.Context, userID string) (*LoginSession, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	return service.issueSessionTokens(context, user)
}

// # Session Rotation

/*
Refresh exchanges a valid refresh token for a rotated token pair.

Description: Implements refresh token rotation. The rotation itself is a
conditional write keyed on the previously stored token, so of two racing
refreshes only the first writer wins. A presented token that no longer
matches storage is treated as reuse: the stored token is cleared, killing
the whole session, and the caller gets TokenReuseDetected.

Parameters:
  - context: context.Context
  - presentedToken: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthenticated (blank token), InvalidToken (signature/expiry/kind),
    NotFound (identity gone), TokenReuseDetected, or storage failures
*/
func (service *Service) Refresh(context context.Context, presentedToken string) (*LoginSession, error) {
	if username.IsBlank(presentedToken) {
		return nil, apperr.Unauthenticated("Missing refresh token")
	}

	// Cryptographic verification happens before any storage access.
	claims, err := service.tokenVerifier.Verify(presentedToken, sec.KindRefresh)
	if err != nil {
		return nil, apperr.InvalidToken(err)
	}

	user, err := service.userRepository.FindByID(context, claims.UserID())
	if err != nil {
		return nil, err
	}

	// A cryptographically valid token that differs from the stored value has
	// been rotated away already: someone is replaying it.
	if user.RefreshToken == "" || user.RefreshToken != presentedToken {
		return nil, service.handleTokenReuse(context, user.ID)
	}

	accessToken, newRefreshToken, err := service.mintTokenPair(user.ID)
	if err != nil {
		return nil, err
	}

	// First writer wins: the conditional update fails for any refresh that
	// lost the race since the comparison above.
	err = service.userRepository.RotateRefreshToken(context, user.ID, presentedToken, newRefreshToken)
	if err != nil {
		if apperr.IsCode(err, "TOKEN_REUSE_DETECTED") {
			return nil, service.handleTokenReuse(context, user.ID)
		}
		return nil, fmt.Errorf("auth_service_rotate_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: time.Now().Add(RefreshTokenTTL),
		User:                  user.Sanitized(),
	}, nil
}

/*
Logout ends the user's session by clearing the stored refresh token.

Description: Idempotent — logging out an already-ended session succeeds.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Persistence failures only
*/
func (service *Service) Logout(context context.Context, userID string) error {
	if err := service.userRepository.ClearRefreshToken(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	service.logger.Info("user_logged_out", slog.String("user_id", userID))

	return nil
}

// # Credential Management

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password before storing the new hash. The
live session is kept; only the password hash changes.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized, NotFound, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	service.logger.Info("user_password_changed", slog.String("user_id", userID))

	return nil
}

// # Internal Helpers

// issueSessionTokens mints a token pair for the user and durably stores the
// refresh half. This is the single write of the issuance path.
func (service *Service) issueSessionTokens(context context.Context, user *User) (*LoginSession, error) {
	accessToken, refreshToken, err := service.mintTokenPair(user.ID)
	if err != nil {
		return nil, err
	}

	if err := service.userRepository.UpdateRefreshToken(context, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_store_refresh_token_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: time.Now().Add(RefreshTokenTTL),
		User:                  user.Sanitized(),
	}, nil
}

// mintTokenPair generates the access and refresh JWTs for a user ID.
func (service *Service) mintTokenPair(userID string) (accessToken, refreshToken string, err error) {
	accessToken, err = service.tokenProvider.Generate(userID, sec.KindAccess, AccessTokenTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err = service.tokenProvider.Generate(userID, sec.KindRefresh, RefreshTokenTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return accessToken, refreshToken, nil
}

// handleTokenReuse clears the stored token (whole-session invalidation) and
// returns the security error surfaced to the caller.
func (service *Service) handleTokenReuse(context context.Context, userID string) error {
	if err := service.userRepository.ClearRefreshToken(context, userID); err != nil {
		service.logger.Error("refresh_token_reuse_cleanup_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Warn("refresh_token_reuse_detected", slog.String("user_id", userID))

	return apperr.TokenReuseDetected()
}
