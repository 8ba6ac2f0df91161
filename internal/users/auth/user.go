// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core User entity and the dual-token session lifecycle: a
short-lived access JWT proves identity per request, while a long-lived
refresh JWT — persisted on the identity row — can be exchanged for a fresh
pair. Refresh is rotation-only: every successful exchange replaces the
stored token, and a presented token that no longer matches storage is
treated as reuse, not as a routine miss.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no
external dependencies and encapsulate all business rules related to user
identity.
*/
package auth

import (
	"time"
)

// # Domain Entities

// User represents a registered member of the VidTube platform.
//
// Both media slots carry a pair of references: the public URL served to
// clients and the store-side asset ID needed to delete the object later.
// The cover slot is optional and stays empty when the member never
// uploaded one.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string `json:"display_name"`

	AvatarURL     string `json:"avatar_url"`
	AvatarAssetID string `json:"-"` // Store-side key, not client-facing.
	CoverURL      string `json:"cover_url,omitempty"`
	CoverAssetID  string `json:"-"`

	// RefreshToken is the currently valid refresh JWT for this identity.
	// Empty means no live session. Omitted from JSON for security.
	RefreshToken string `json:"-"`

	// WatchHistory holds watched video IDs, most recent first. Exposed only
	// through the dedicated history endpoint, never in profile payloads.
	WatchHistory []string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the user safe for transport payloads, with
// the password hash and refresh token cleared.
func (user *User) Sanitized() *User {
	clone := *user
	clone.PasswordHash = ""
	clone.RefreshToken = ""
	return &clone
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "full_name"
	FieldLogin           = "login"
	FieldAvatar          = "avatar"
	FieldCover           = "cover_image"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldRefreshToken    = "refresh_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
)
