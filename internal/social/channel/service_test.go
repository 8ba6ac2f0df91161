// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package channel_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/social/channel"
	"github.com/arjunmehra/vidtube/internal/users/auth"
)

// fakeIdentityRepository serves identities and owner projections from memory.
type fakeIdentityRepository struct {
	users map[string]*auth.User // keyed by ID
}

func (f *fakeIdentityRepository) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Channel")
}

func (f *fakeIdentityRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeIdentityRepository) FindOwners(_ context.Context, ids []string) (map[string]channel.Owner, error) {
	owners := map[string]channel.Owner{}
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			owners[id] = channel.Owner{
				Username:    user.Username,
				DisplayName: user.DisplayName,
				AvatarURL:   user.AvatarURL,
			}
		}
	}
	return owners, nil
}

// fakeSubscriptionRepository counts the edges held in a simple slice.
type fakeSubscriptionRepository struct {
	edges      [][2]string // {subscriberID, channelID}
	countCalls int
}

func (f *fakeSubscriptionRepository) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	f.countCalls++
	var count int64
	for _, edge := range f.edges {
		if edge[1] == channelID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubscriptionRepository) CountSubscriptions(_ context.Context, subscriberID string) (int64, error) {
	f.countCalls++
	var count int64
	for _, edge := range f.edges {
		if edge[0] == subscriberID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubscriptionRepository) IsSubscribed(_ context.Context, subscriberID, channelID string) (bool, error) {
	for _, edge := range f.edges {
		if edge[0] == subscriberID && edge[1] == channelID {
			return true, nil
		}
	}
	return false, nil
}

// fakeVideoRepository serves videos from memory.
type fakeVideoRepository struct {
	videos map[string]channel.Video
}

func (f *fakeVideoRepository) FindByIDs(_ context.Context, ids []string) (map[string]channel.Video, error) {
	found := map[string]channel.Video{}
	for _, id := range ids {
		if video, ok := f.videos[id]; ok {
			found[id] = video
		}
	}
	return found, nil
}

// fakeStatsCache is an in-memory StatsCache.
type fakeStatsCache struct {
	entries map[string]*channel.Stats
}

func (f *fakeStatsCache) GetStats(_ context.Context, channelID string) (*channel.Stats, error) {
	stats, ok := f.entries[channelID]
	if !ok {
		return nil, apperr.NotFound("Channel stats cache entry")
	}
	clone := *stats
	return &clone, nil
}

func (f *fakeStatsCache) SetStats(_ context.Context, channelID string, stats *channel.Stats) error {
	clone := *stats
	f.entries[channelID] = &clone
	return nil
}

type fixtures struct {
	identities    *fakeIdentityRepository
	subscriptions *fakeSubscriptionRepository
	videos        *fakeVideoRepository
	cache         *fakeStatsCache
}

func newTestService(t *testing.T) (*channel.Service, *fixtures) {
	t.Helper()

	f := &fixtures{
		identities:    &fakeIdentityRepository{users: map[string]*auth.User{}},
		subscriptions: &fakeSubscriptionRepository{},
		videos:        &fakeVideoRepository{videos: map[string]channel.Video{}},
		cache:         &fakeStatsCache{entries: map[string]*channel.Stats{}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return channel.NewService(f.identities, f.subscriptions, f.videos, f.cache, logger), f
}

func TestGetChannelProfile(t *testing.T) {
	service, f := newTestService(t)
	f.identities.users["ch1"] = &auth.User{
		ID: "ch1", Username: "alice", DisplayName: "Alice", Email: "secret@example.com",
		PasswordHash: "secret", AvatarURL: "https://cdn/a.png",
	}
	f.identities.users["v1"] = &auth.User{ID: "v1", Username: "bob"}
	f.subscriptions.edges = [][2]string{
		{"v1", "ch1"},
		{"x", "ch1"},
		{"ch1", "x"},
	}

	// Case-insensitive resolve; anonymous viewer.
	profile, err := service.GetChannelProfile(context.Background(), "", "  ALICE ")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, int64(2), profile.SubscriberCount)
	assert.Equal(t, int64(1), profile.SubscribedToCount)
	assert.False(t, profile.IsSubscribed)

	// A subscribed viewer flips the flag; a non-subscriber does not.
	profile, err = service.GetChannelProfile(context.Background(), "v1", "alice")
	require.NoError(t, err)
	assert.True(t, profile.IsSubscribed)

	profile, err = service.GetChannelProfile(context.Background(), "stranger", "alice")
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)
}

func TestGetChannelProfile_Misses(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.GetChannelProfile(context.Background(), "", "ghost")
	assert.True(t, apperr.IsNotFound(err))

	_, err = service.GetChannelProfile(context.Background(), "", "   ")
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
}

func TestGetChannelProfile_StatsServedFromCache(t *testing.T) {
	service, f := newTestService(t)
	f.identities.users["ch1"] = &auth.User{ID: "ch1", Username: "alice"}
	f.subscriptions.edges = [][2]string{{"x", "ch1"}}

	// First read computes and primes the cache.
	profile, err := service.GetChannelProfile(context.Background(), "", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscriberCount)
	countsAfterFirst := f.subscriptions.countCalls

	// Edge changes are invisible until the TTL expires: the second read
	// never touches the counting queries.
	f.subscriptions.edges = append(f.subscriptions.edges, [2]string{"y", "ch1"})

	profile, err = service.GetChannelProfile(context.Background(), "", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscriberCount)
	assert.Equal(t, countsAfterFirst, f.subscriptions.countCalls)
}

func TestGetWatchHistory_PreservesStoredOrder(t *testing.T) {
	service, f := newTestService(t)
	f.identities.users["u1"] = &auth.User{
		ID: "u1", Username: "viewer",
		WatchHistory: []string{"vid3", "vid1", "vid2"},
	}
	f.identities.users["owner1"] = &auth.User{ID: "owner1", Username: "alice", DisplayName: "Alice", AvatarURL: "https://cdn/a.png"}
	f.videos.videos = map[string]channel.Video{
		"vid1": {ID: "vid1", OwnerID: "owner1", Title: "First"},
		"vid2": {ID: "vid2", OwnerID: "owner1", Title: "Second"},
		"vid3": {ID: "vid3", OwnerID: "owner1", Title: "Third"},
	}

	history, err := service.GetWatchHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	// The stored order wins, not the batch-fetch order.
	assert.Equal(t, "vid3", history[0].ID)
	assert.Equal(t, "vid1", history[1].ID)
	assert.Equal(t, "vid2", history[2].ID)

	// Owner projection is attached.
	assert.Equal(t, "alice", history[0].Owner.Username)
	assert.Equal(t, "Alice", history[0].Owner.DisplayName)
}

func TestGetWatchHistory_SkipsDeletedVideos(t *testing.T) {
	service, f := newTestService(t)
	f.identities.users["u1"] = &auth.User{
		ID: "u1", Username: "viewer",
		WatchHistory: []string{"vid1", "gone", "vid2"},
	}
	f.identities.users["owner1"] = &auth.User{ID: "owner1", Username: "alice"}
	f.videos.videos = map[string]channel.Video{
		"vid1": {ID: "vid1", OwnerID: "owner1"},
		"vid2": {ID: "vid2", OwnerID: "owner1"},
	}

	history, err := service.GetWatchHistory(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "vid1", history[0].ID)
	assert.Equal(t, "vid2", history[1].ID)
}

func TestGetWatchHistory_Misses(t *testing.T) {
	service, f := newTestService(t)
	f.identities.users["u1"] = &auth.User{ID: "u1", Username: "viewer"}

	// Empty history is an empty slice, not nil or an error.
	history, err := service.GetWatchHistory(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)

	// Unknown identity resolves explicitly, never silently.
	_, err = service.GetWatchHistory(context.Background(), "ghost")
	assert.True(t, apperr.IsNotFound(err))
}
