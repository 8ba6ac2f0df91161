// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package auth

import (
	"context"
)

// # User Data Access

// UserRepository defines the data access contract for user identities.
//
// Username and email lookups expect canonical (lowercased, normalized)
// input; callers go through pkg/username before hitting the repository.
type UserRepository interface {

	/*
		Create persists a brand-new user identity to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID returns the identity with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the identity with the given canonical username.

		Parameters:
		  - context: context.Context
		  - username: string (canonical form)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindByEmail returns the identity with the given canonical email.

		Parameters:
		  - context: context.Context
		  - email: string (canonical form)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		UpdateRefreshToken unconditionally stores a new refresh token for the
		identity. Used at login and token issuance — exactly one durable write.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateRefreshToken(context context.Context, userID, token string) error

	/*
		RotateRefreshToken atomically replaces the stored refresh token, but
		only if the currently stored value still equals previousToken. The
		first concurrent writer wins; any later writer gets
		apperr.TokenReuseDetected.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - previousToken: string (the value the caller believes is stored)
		  - newToken: string

		Returns:
		  - error: apperr.TokenReuseDetected on a stale previousToken, or
		    persistence failures
	*/
	RotateRefreshToken(context context.Context, userID, previousToken, newToken string) error

	/*
		ClearRefreshToken removes the stored refresh token, ending the
		session. Clearing an already-empty token is not an error.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	ClearRefreshToken(context context.Context, userID string) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error
}
