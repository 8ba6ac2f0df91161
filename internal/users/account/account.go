// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

/*
Package account handles user provisioning and profile management.

It owns the registration saga — a multi-step flow spanning two media uploads
and an identity insert — plus the endpoints for members to view and update
their own profile and media.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Compensation: Partial failures must not leak orphan media assets. Every
    upload is tracked on a reversal list that is walked backwards on failure.
  - Media: Uploads go through the [media.Store] adapter; storage never sees
    raw file bytes.
*/
package account

import (
	"context"

	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// # Repository Contracts

// AccountRepository defines the persistence contract for user provisioning
// and profile maintenance.
//
// Lookups expect canonical username/email input, same as the auth store.
type AccountRepository interface {
	/*
		Create persists a fully-assembled new identity.

		Parameters:
		  - context: context.Context
		  - user: *auth.User

		Returns:
		  - error: Storage or constraint failures
	*/
	Create(context context.Context, user *auth.User) error

	/*
		FindByID retrieves a user record by their unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		FindByUsername retrieves a user record by canonical username.
		Used for the case-insensitive uniqueness check.

		Parameters:
		  - context: context.Context
		  - username: string (canonical form)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*auth.User, error)

	/*
		FindByEmail retrieves a user record by canonical email.

		Parameters:
		  - context: context.Context
		  - email: string (canonical form)

		Returns:
		  - *auth.User: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*auth.User, error)

	/*
		UpdateDetails modifies the display name and email of an account.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - displayName: string
		  - email: string (canonical form)

		Returns:
		  - error: Storage or constraint failures
	*/
	UpdateDetails(context context.Context, userID, displayName, email string) error

	/*
		UpdateAvatar swaps the avatar reference pair on the identity.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - url: string
		  - assetID: string

		Returns:
		  - error: Storage failures
	*/
	UpdateAvatar(context context.Context, userID, url, assetID string) error

	/*
		UpdateCover swaps the cover image reference pair on the identity.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - url: string
		  - assetID: string

		Returns:
		  - error: Storage failures
	*/
	UpdateCover(context context.Context, userID, url, assetID string) error
}
