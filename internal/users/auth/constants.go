// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package auth

import "time"

// # Session Token Lifetimes

const (
	// AccessTokenTTL is the lifetime of a short-lived access JWT.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of a long-lived refresh JWT.
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// # Credential Policy

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MinUsernameLength is the minimum accepted handle length.
	MinUsernameLength = 3

	// MaxDisplayNameLength caps the public display name.
	MaxDisplayNameLength = 100
)
