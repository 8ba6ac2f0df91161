// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

/*
Package channel implements the social-graph read side: public channel
profiles and per-user watch history.

It aggregates data owned by other domains — identities, subscription edges,
videos — into transport-ready projections. Everything here is read-only:
this package never writes to the social graph.

# Architecture

  - Projections: Profile and VideoSummary are assembled in the service from
    batch lookups; sensitive identity fields (email, password hash) never
    enter them.
  - Caching: Channel stats (the two subscription counts) live in Redis with
    a short TTL. The cache is an accelerator only — every cache failure
    falls through to PostgreSQL.
*/
package channel

import (
	"context"
	"time"

	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// # Domain Entities

// Profile is the public view of a channel, shaped for transport.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	CoverURL    string `json:"cover_url,omitempty"`

	// SubscriberCount is the number of members subscribed to this channel.
	SubscriberCount int64 `json:"subscriber_count"`

	// SubscribedToCount is the number of channels this member subscribes to.
	SubscribedToCount int64 `json:"subscribed_to_count"`

	// IsSubscribed reports whether the viewing member subscribes to this
	// channel. Always false for anonymous viewers.
	IsSubscribed bool `json:"is_subscribed"`

	CreatedAt time.Time `json:"created_at"`
}

// Stats carries the cacheable counting half of a channel profile.
type Stats struct {
	SubscriberCount   int64 `json:"subscriber_count"`
	SubscribedToCount int64 `json:"subscribed_to_count"`
}

// Owner is the minimal channel projection attached to a watched video.
type Owner struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Video is the storage-side shape of a published video.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"-"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"created_at"`
}

// VideoSummary is a watched video zipped with its owner projection.
type VideoSummary struct {
	Video
	Owner Owner `json:"owner"`
}

// # Repository Contracts

// IdentityRepository is the read contract this package needs from the
// identity store.
type IdentityRepository interface {

	/*
		FindByUsername resolves a channel by its canonical handle.

		Parameters:
		  - context: context.Context
		  - username: string (canonical form)

		Returns:
		  - *auth.User: Hydrated identity
		  - error: apperr.NotFound or database errors
	*/
	FindByUsername(context context.Context, username string) (*auth.User, error)

	/*
		FindByID resolves an identity by primary key. Used to read the
		ordered watch history before the batch fetches.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *auth.User: Hydrated identity
		  - error: apperr.NotFound or database errors
	*/
	FindByID(context context.Context, id string) (*auth.User, error)

	/*
		FindOwners batch-resolves identities into owner projections.
		IDs with no matching identity are simply absent from the result.

		Parameters:
		  - context: context.Context
		  - ids: []string

		Returns:
		  - map[string]Owner: Keyed by identity ID
		  - error: Database errors
	*/
	FindOwners(context context.Context, ids []string) (map[string]Owner, error)
}

// SubscriptionRepository is the read contract over the subscription edges.
// The social core never writes these edges.
type SubscriptionRepository interface {

	/*
		CountSubscribers counts edges pointing AT the channel.

		Parameters:
		  - context: context.Context
		  - channelID: string

		Returns:
		  - int64: Subscriber count
		  - error: Database errors
	*/
	CountSubscribers(context context.Context, channelID string) (int64, error)

	/*
		CountSubscriptions counts edges pointing AWAY from the member.

		Parameters:
		  - context: context.Context
		  - subscriberID: string

		Returns:
		  - int64: Subscribed-to count
		  - error: Database errors
	*/
	CountSubscriptions(context context.Context, subscriberID string) (int64, error)

	/*
		IsSubscribed reports whether the edge (subscriberID -> channelID) exists.

		Parameters:
		  - context: context.Context
		  - subscriberID: string
		  - channelID: string

		Returns:
		  - bool: Membership flag
		  - error: Database errors
	*/
	IsSubscribed(context context.Context, subscriberID, channelID string) (bool, error)
}

// VideoRepository is the read contract over the video catalog.
type VideoRepository interface {

	/*
		FindByIDs batch-fetches videos by primary key. Missing IDs are
		absent from the result, not an error.

		Parameters:
		  - context: context.Context
		  - ids: []string

		Returns:
		  - map[string]Video: Keyed by video ID
		  - error: Database errors
	*/
	FindByIDs(context context.Context, ids []string) (map[string]Video, error)
}

// StatsCache is the volatile store for channel stats.
type StatsCache interface {

	/*
		GetStats returns the cached stats for a channel.

		Parameters:
		  - context: context.Context
		  - channelID: string

		Returns:
		  - *Stats: Cached counts
		  - error: apperr.NotFound on a miss, or connectivity errors
	*/
	GetStats(context context.Context, channelID string) (*Stats, error)

	/*
		SetStats caches the stats for a channel with the standard TTL.

		Parameters:
		  - context: context.Context
		  - channelID: string
		  - stats: *Stats

		Returns:
		  - error: Connectivity errors
	*/
	SetStats(context context.Context, channelID string, stats *Stats) error
}
