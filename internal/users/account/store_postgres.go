// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// accountColumns is the shared projection for provisioning lookups.
const accountColumns = `
	id, username, email, passwordhash, displayname,
	avatarurl, avatarassetid, coverurl, coverassetid,
	COALESCE(refreshtoken, ''), watchhistory, createdat, updatedat`

// # Account Repository

// PostgresAccountRepository implements the AccountRepository interface using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
Create persists a fully-assembled identity into the users.account table.

Parameters:
  - context: context.Context
  - user: *auth.User

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, user *auth.User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, displayname,
			avatarurl, avatarassetid, coverurl, coverassetid,
			refreshtoken, watchhistory, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if user.WatchHistory == nil {
		user.WatchHistory = []string{}
	}

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.DisplayName,
		user.AvatarURL,
		user.AvatarAssetID,
		user.CoverURL,
		user.CoverAssetID,
		user.RefreshToken,
		user.WatchHistory,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves an identity record by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	query := `SELECT` + accountColumns + `
		FROM users.account
		WHERE id = $1`

	return repository.scanOne(context, query, id, "postgres_account_repo_find_by_id_failed")
}

/*
FindByUsername retrieves an identity record by its canonical username.

Parameters:
  - context: context.Context
  - username: string (canonical form)

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByUsername(context context.Context, username string) (*auth.User, error) {
	query := `SELECT` + accountColumns + `
		FROM users.account
		WHERE username = $1`

	return repository.scanOne(context, query, username, "postgres_account_repo_find_by_username_failed")
}

/*
FindByEmail retrieves an identity record by its canonical email.

Parameters:
  - context: context.Context
  - email: string (canonical form)

Returns:
  - *auth.User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*auth.User, error) {
	query := `SELECT` + accountColumns + `
		FROM users.account
		WHERE email = $1`

	return repository.scanOne(context, query, email, "postgres_account_repo_find_by_email_failed")
}

/*
UpdateDetails replaces the display name and email of an account.

Parameters:
  - context: context.Context
  - userID: string
  - displayName: string
  - email: string (canonical form)

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) UpdateDetails(context context.Context, userID, displayName, email string) error {
	const query = `
		UPDATE users.account
		SET displayname = $2, email = $3, updatedat = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, displayName, email, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_details_failed: %w", err)
	}

	return nil
}

/*
UpdateAvatar swaps the avatar reference pair on the identity.

Parameters:
  - context: context.Context
  - userID: string
  - url: string
  - assetID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) UpdateAvatar(context context.Context, userID, url, assetID string) error {
	const query = `
		UPDATE users.account
		SET avatarurl = $2, avatarassetid = $3, updatedat = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, url, assetID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_avatar_failed: %w", err)
	}

	return nil
}

/*
UpdateCover swaps the cover image reference pair on the identity.

Parameters:
  - context: context.Context
  - userID: string
  - url: string
  - assetID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresAccountRepository) UpdateCover(context context.Context, userID, url, assetID string) error {
	const query = `
		UPDATE users.account
		SET coverurl = $2, coverassetid = $3, updatedat = $4
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, url, assetID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_cover_failed: %w", err)
	}

	return nil
}

// scanOne executes a single-row lookup and hydrates the entity.
func (repository *PostgresAccountRepository) scanOne(context context.Context, query, arg, errContext string) (*auth.User, error) {
	user := &auth.User{}
	err := repository.pool.QueryRow(context, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.AvatarURL,
		&user.AvatarAssetID,
		&user.CoverURL,
		&user.CoverAssetID,
		&user.RefreshToken,
		&user.WatchHistory,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("%s: %w", errContext, err)
	}

	return user, nil
}
