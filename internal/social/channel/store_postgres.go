// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// # Identity Repository (read-only projection)

// PostgresIdentityRepository implements IdentityRepository using pgx.
//
// It reads the same users.account table as the provisioning stores, but
// only through the projections this domain needs.
type PostgresIdentityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository creates a new PostgreSQL implementation of IdentityRepository.
func NewIdentityRepository(pool *pgxpool.Pool) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{pool: pool}
}

/*
FindByUsername resolves a channel by its canonical handle.

Parameters:
  - context: context.Context
  - username: string (canonical form)

Returns:
  - *auth.User: Hydrated identity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresIdentityRepository) FindByUsername(context context.Context, username string) (*auth.User, error) {
	const query = `
		SELECT id, username, displayname, avatarurl, coverurl, watchhistory, createdat
		FROM users.account
		WHERE username = $1`

	return repository.scanOne(context, query, username, "Channel")
}

/*
FindByID resolves an identity by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *auth.User: Hydrated identity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresIdentityRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	const query = `
		SELECT id, username, displayname, avatarurl, coverurl, watchhistory, createdat
		FROM users.account
		WHERE id = $1`

	return repository.scanOne(context, query, id, "User")
}

/*
FindOwners batch-resolves identities into owner projections.

Parameters:
  - context: context.Context
  - ids: []string

Returns:
  - map[string]Owner: Keyed by identity ID; missing IDs are absent
  - error: Database errors
*/
func (repository *PostgresIdentityRepository) FindOwners(context context.Context, ids []string) (map[string]Owner, error) {
	owners := make(map[string]Owner, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	const query = `
		SELECT id, username, displayname, avatarurl
		FROM users.account
		WHERE id = ANY($1)`

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres_identity_repo_find_owners_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var owner Owner
		if err := rows.Scan(&id, &owner.Username, &owner.DisplayName, &owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("postgres_identity_repo_scan_owner_failed: %w", err)
		}
		owners[id] = owner
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_identity_repo_find_owners_failed: %w", err)
	}

	return owners, nil
}

// scanOne executes a single-row projection lookup.
func (repository *PostgresIdentityRepository) scanOne(context context.Context, query, arg, resource string) (*auth.User, error) {
	user := &auth.User{}
	err := repository.pool.QueryRow(context, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.AvatarURL,
		&user.CoverURL,
		&user.WatchHistory,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(resource)
		}
		return nil, fmt.Errorf("postgres_identity_repo_find_failed: %w", err)
	}

	return user, nil
}

// # Subscription Repository

// PostgresSubscriptionRepository implements SubscriptionRepository using pgx.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository creates a new PostgreSQL implementation of SubscriptionRepository.
func NewSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

/*
CountSubscribers counts edges pointing at the channel.

Parameters:
  - context: context.Context
  - channelID: string

Returns:
  - int64: Subscriber count
  - error: Database errors
*/
func (repository *PostgresSubscriptionRepository) CountSubscribers(context context.Context, channelID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM social.subscription WHERE channelid = $1`

	var count int64
	if err := repository.pool.QueryRow(context, query, channelID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_subscription_repo_count_subscribers_failed: %w", err)
	}

	return count, nil
}

/*
CountSubscriptions counts edges pointing away from the member.

Parameters:
  - context: context.Context
  - subscriberID: string

Returns:
  - int64: Subscribed-to count
  - error: Database errors
*/
func (repository *PostgresSubscriptionRepository) CountSubscriptions(context context.Context, subscriberID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM social.subscription WHERE subscriberid = $1`

	var count int64
	if err := repository.pool.QueryRow(context, query, subscriberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres_subscription_repo_count_subscriptions_failed: %w", err)
	}

	return count, nil
}

/*
IsSubscribed reports whether the subscription edge exists.

Parameters:
  - context: context.Context
  - subscriberID: string
  - channelID: string

Returns:
  - bool: Membership flag
  - error: Database errors
*/
func (repository *PostgresSubscriptionRepository) IsSubscribed(context context.Context, subscriberID, channelID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM social.subscription
			WHERE subscriberid = $1 AND channelid = $2
		)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, subscriberID, channelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_subscription_repo_membership_failed: %w", err)
	}

	return exists, nil
}

// # Video Repository

// PostgresVideoRepository implements VideoRepository using pgx.
type PostgresVideoRepository struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new PostgreSQL implementation of VideoRepository.
func NewVideoRepository(pool *pgxpool.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

/*
FindByIDs batch-fetches videos by primary key.

Description: A single ANY($1) query regardless of history length. Deleted
videos are simply absent from the result map.

Parameters:
  - context: context.Context
  - ids: []string

Returns:
  - map[string]Video: Keyed by video ID
  - error: Database errors
*/
func (repository *PostgresVideoRepository) FindByIDs(context context.Context, ids []string) (map[string]Video, error) {
	videos := make(map[string]Video, len(ids))
	if len(ids) == 0 {
		return videos, nil
	}

	const query = `
		SELECT id, ownerid, title, description, videourl, thumbnailurl, duration, views, createdat
		FROM videos.video
		WHERE id = ANY($1)`

	rows, err := repository.pool.Query(context, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres_video_repo_find_by_ids_failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var video Video
		err := rows.Scan(
			&video.ID,
			&video.OwnerID,
			&video.Title,
			&video.Description,
			&video.VideoURL,
			&video.ThumbnailURL,
			&video.Duration,
			&video.Views,
			&video.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres_video_repo_scan_failed: %w", err)
		}
		videos[video.ID] = video
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_video_repo_find_by_ids_failed: %w", err)
	}

	return videos, nil
}
