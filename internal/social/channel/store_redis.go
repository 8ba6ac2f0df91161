// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/platform/constants"
)

// statsCacheTTL keeps channel counts fresh enough for profile pages while
// absorbing repeated reads of popular channels.
const statsCacheTTL = 60 * time.Second

// RedisStatsCache implements StatsCache using Redis.
type RedisStatsCache struct {
	client *redis.Client
}

// NewStatsCache creates a new Redis-backed StatsCache.
func NewStatsCache(client *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{client: client}
}

/*
GetStats returns the cached stats for a channel.

Parameters:
  - context: context.Context
  - channelID: string

Returns:
  - *Stats: Cached counts
  - error: apperr.NotFound on a miss, or connectivity errors
*/
func (cache *RedisStatsCache) GetStats(context context.Context, channelID string) (*Stats, error) {
	key := constants.RedisPrefixChannelStats + channelID

	payload, err := cache.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Channel stats cache entry")
		}
		return nil, fmt.Errorf("redis_channel_stats_get_failed: %w", err)
	}

	stats := &Stats{}
	if err := json.Unmarshal(payload, stats); err != nil {
		// A corrupt entry behaves like a miss; the caller recomputes.
		return nil, apperr.NotFound("Channel stats cache entry")
	}

	return stats, nil
}

/*
SetStats caches the stats for a channel with the standard TTL.

Parameters:
  - context: context.Context
  - channelID: string
  - stats: *Stats

Returns:
  - error: Connectivity errors
*/
func (cache *RedisStatsCache) SetStats(context context.Context, channelID string, stats *Stats) error {
	key := constants.RedisPrefixChannelStats + channelID

	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis_channel_stats_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, key, payload, statsCacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_channel_stats_set_failed: %w", err)
	}

	return nil
}
