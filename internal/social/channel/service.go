// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package channel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arjunmehra/vidtube/internal/platform/validate"
	"github.com/arjunmehra/vidtube/internal/users/auth"
	"github.com/arjunmehra/vidtube/pkg/username"
)

// # Service Layer

// Service assembles social-graph projections from the read repositories.
type Service struct {
	identityRepository     IdentityRepository
	subscriptionRepository SubscriptionRepository
	videoRepository        VideoRepository
	statsCache             StatsCache
	logger                 *slog.Logger
}

// NewService constructs a new [Service] with its read-side dependencies.
//
// statsCache may be nil, in which case every profile read goes straight to
// PostgreSQL.
func NewService(
	identityRepo IdentityRepository,
	subscriptionRepo SubscriptionRepository,
	videoRepo VideoRepository,
	statsCache StatsCache,
	logger *slog.Logger,
) *Service {
	return &Service{
		identityRepository:     identityRepo,
		subscriptionRepository: subscriptionRepo,
		videoRepository:        videoRepo,
		statsCache:             statsCache,
		logger:                 logger,
	}
}

// # Channel Profiles

/*
GetChannelProfile assembles the public profile of a channel.

Description: Resolves the channel case-insensitively, attaches the two
subscription counts (cached in Redis with a short TTL), and — for
authenticated viewers — whether the viewer subscribes to the channel.
The projection never contains the channel's email or credentials.

Parameters:
  - context: context.Context
  - viewerID: string (empty for anonymous viewers)
  - handle: string (raw username from the URL)

Returns:
  - *Profile: Transport-ready channel projection
  - err: ValidationError (blank handle), NotFound, or storage failures
*/
func (service *Service) GetChannelProfile(context context.Context, viewerID, handle string) (*Profile, error) {
	if username.IsBlank(handle) {
		return nil, validate.RequiredError(auth.FieldUsername, "Username is required")
	}

	channel, err := service.identityRepository.FindByUsername(context, username.Canonical(handle))
	if err != nil {
		return nil, err
	}

	stats, err := service.resolveStats(context, channel.ID)
	if err != nil {
		return nil, err
	}

	isSubscribed := false
	if viewerID != "" {
		isSubscribed, err = service.subscriptionRepository.IsSubscribed(context, viewerID, channel.ID)
		if err != nil {
			return nil, fmt.Errorf("channel_service_membership_check_failed: %w", err)
		}
	}

	return &Profile{
		ID:                channel.ID,
		Username:          channel.Username,
		DisplayName:       channel.DisplayName,
		AvatarURL:         channel.AvatarURL,
		CoverURL:          channel.CoverURL,
		SubscriberCount:   stats.SubscriberCount,
		SubscribedToCount: stats.SubscribedToCount,
		IsSubscribed:      isSubscribed,
		CreatedAt:         channel.CreatedAt,
	}, nil
}

// resolveStats returns the channel counts, serving from cache when possible.
// Cache failures are logged and absorbed: counting queries are the fallback,
// not the exception path.
func (service *Service) resolveStats(context context.Context, channelID string) (*Stats, error) {
	if service.statsCache != nil {
		if stats, err := service.statsCache.GetStats(context, channelID); err == nil {
			return stats, nil
		}
	}

	subscriberCount, err := service.subscriptionRepository.CountSubscribers(context, channelID)
	if err != nil {
		return nil, fmt.Errorf("channel_service_subscriber_count_failed: %w", err)
	}

	subscribedToCount, err := service.subscriptionRepository.CountSubscriptions(context, channelID)
	if err != nil {
		return nil, fmt.Errorf("channel_service_subscription_count_failed: %w", err)
	}

	stats := &Stats{
		SubscriberCount:   subscriberCount,
		SubscribedToCount: subscribedToCount,
	}

	if service.statsCache != nil {
		if err := service.statsCache.SetStats(context, channelID, stats); err != nil {
			service.logger.Debug("channel_stats_cache_write_failed",
				slog.String("channel_id", channelID),
				slog.String("error", err.Error()),
			)
		}
	}

	return stats, nil
}

// # Watch History

/*
GetWatchHistory returns the member's watched videos, most recent first.

Description: Resolves the identity explicitly, batch-fetches the referenced
videos and their owners, then zips the projections client-side in the exact
order stored on the identity. Videos that have been deleted since being
watched are skipped silently.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []VideoSummary: Ordered history with owner projections
  - err: NotFound (identity gone) or storage failures
*/
func (service *Service) GetWatchHistory(context context.Context, userID string) ([]VideoSummary, error) {
	user, err := service.identityRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if len(user.WatchHistory) == 0 {
		return []VideoSummary{}, nil
	}

	videos, err := service.videoRepository.FindByIDs(context, user.WatchHistory)
	if err != nil {
		return nil, fmt.Errorf("channel_service_history_videos_failed: %w", err)
	}

	owners, err := service.identityRepository.FindOwners(context, ownerIDs(videos))
	if err != nil {
		return nil, fmt.Errorf("channel_service_history_owners_failed: %w", err)
	}

	// Zip in stored order. The maps lose ordering, the history slice is the
	// single source of truth for it.
	history := make([]VideoSummary, 0, len(user.WatchHistory))
	for _, videoID := range user.WatchHistory {
		video, ok := videos[videoID]
		if !ok {
			continue
		}
		history = append(history, VideoSummary{
			Video: video,
			Owner: owners[video.OwnerID],
		})
	}

	return history, nil
}

// ownerIDs collects the distinct owner IDs across the fetched videos.
func ownerIDs(videos map[string]Video) []string {
	seen := make(map[string]bool, len(videos))
	ids := make([]string, 0, len(videos))
	for _, video := range videos {
		if !seen[video.OwnerID] {
			seen[video.OwnerID] = true
			ids = append(ids, video.OwnerID)
		}
	}
	return ids
}
