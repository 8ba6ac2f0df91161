// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

// PostgreSQL implementation of the identity store.
//
// # Err Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
)

// userColumns is the shared projection for all identity lookups.
//
// refreshtoken is nullable in storage; COALESCE keeps the entity's
// zero-value convention (empty string = no live session).
const userColumns = `
	id, username, email, passwordhash, displayname,
	avatarurl, avatarassetid, coverurl, coverassetid,
	COALESCE(refreshtoken, ''), watchhistory, createdat, updatedat`

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new identity record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
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
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves an identity record by its unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users.account
		WHERE id = $1`

	return repository.scanOne(context, query, id, "postgres_user_repo_find_by_id_failed")
}

/*
FindByUsername retrieves an identity record by its canonical username.

Parameters:
  - context: context.Context
  - username: string (canonical form)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users.account
		WHERE username = $1`

	return repository.scanOne(context, query, username, "postgres_user_repo_find_by_username_failed")
}

/*
FindByEmail retrieves an identity record by its canonical email address.

Parameters:
  - context: context.Context
  - email: string (canonical form)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := `SELECT` + userColumns + `
		FROM users.account
		WHERE email = $1`

	return repository.scanOne(context, query, email, "postgres_user_repo_find_by_email_failed")
}

/*
UpdateRefreshToken unconditionally stores a new refresh token for the identity.

Description: The single durable write of the issuance path (login, register).

Parameters:
  - context: context.Context
  - userID: string
  - token: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdateRefreshToken(context context.Context, userID, token string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = NULLIF($2, ''), updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_refresh_token_failed: %w", err)
	}

	return nil
}

/*
RotateRefreshToken atomically swaps the stored refresh token.

Description: The WHERE clause pins the rotation to the previously stored
value, so two concurrent refreshes cannot both succeed: the losing writer
matches zero rows and gets apperr.TokenReuseDetected.

Parameters:
  - context: context.Context
  - userID: string
  - previousToken: string
  - newToken: string

Returns:
  - error: apperr.TokenReuseDetected on a stale previousToken, or execution errors
*/
func (repository *PostgresUserRepository) RotateRefreshToken(context context.Context, userID, previousToken, newToken string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = $3, updatedat = $4
		WHERE id = $1 AND refreshtoken = $2`

	tag, err := repository.pool.Exec(context, query, userID, previousToken, newToken, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_rotate_refresh_token_failed: %w", err)
	}

	// The identity was resolved by the caller, so zero rows means the stored
	// token changed underneath us — a lost rotation race or a replay.
	if tag.RowsAffected() == 0 {
		return apperr.TokenReuseDetected()
	}

	return nil
}

/*
ClearRefreshToken removes the stored refresh token, ending the session.

Description: Idempotent — clearing an already-empty token matches the row
and succeeds.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) ClearRefreshToken(context context.Context, userID string) error {
	const query = `
		UPDATE users.account
		SET refreshtoken = NULL, updatedat = $2
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_clear_refresh_token_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	return nil
}

// scanOne executes a single-row lookup and hydrates the entity.
func (repository *PostgresUserRepository) scanOne(context context.Context, query, arg, errContext string) (*User, error) {
	user := &User{}
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
