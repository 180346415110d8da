package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/repositories"
	"github.com/sbilibin2017/gw-videotube/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelService_GetChannelProfile(t *testing.T) {
	ctx := context.Background()
	channel := &models.UserDB{UserID: uuid.New(), Username: "carol", FullName: "Carol C", Email: "carol@example.com", Avatar: "https://cdn/c.png"}
	viewer := uuid.New()

	t.Run("cache miss reads store and fills cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		users := services.NewMockUserReader(ctrl)
		subs := services.NewMockSubscriptionReader(ctrl)
		cache := services.NewMockChannelStatsCache(ctrl)

		users.EXPECT().GetByUsername(gomock.Any(), "carol").Return(channel, nil)
		cache.EXPECT().Get(gomock.Any(), channel.UserID).Return(nil, repositories.ErrCacheMiss)
		subs.EXPECT().CountSubscribers(gomock.Any(), channel.UserID).Return(int64(2), nil)
		subs.EXPECT().CountSubscribedTo(gomock.Any(), channel.UserID).Return(int64(0), nil)
		cache.EXPECT().Set(gomock.Any(), channel.UserID, models.ChannelStats{SubscribersCount: 2}).Return(nil)
		subs.EXPECT().Exists(gomock.Any(), viewer, channel.UserID).Return(true, nil)

		svc := services.NewChannelService(users, subs, nil, cache)
		profile, err := svc.GetChannelProfile(ctx, "Carol", &viewer)
		require.NoError(t, err)
		assert.Equal(t, &models.ChannelProfile{
			FullName:         "Carol C",
			Username:         "carol",
			SubscribersCount: 2,
			IsSubscribed:     true,
			Avatar:           "https://cdn/c.png",
			Email:            "carol@example.com",
		}, profile)
	})

	t.Run("cache hit anonymous viewer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		users := services.NewMockUserReader(ctrl)
		subs := services.NewMockSubscriptionReader(ctrl)
		cache := services.NewMockChannelStatsCache(ctrl)

		users.EXPECT().GetByUsername(gomock.Any(), "carol").Return(channel, nil)
		cache.EXPECT().Get(gomock.Any(), channel.UserID).Return(&models.ChannelStats{SubscribersCount: 5, ChannelsSubscribedToCount: 1}, nil)

		svc := services.NewChannelService(users, subs, nil, cache)
		profile, err := svc.GetChannelProfile(ctx, "carol", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(5), profile.SubscribersCount)
		assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
		assert.False(t, profile.IsSubscribed)
	})

	t.Run("cache unavailable falls back to store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		users := services.NewMockUserReader(ctrl)
		subs := services.NewMockSubscriptionReader(ctrl)
		cache := services.NewMockChannelStatsCache(ctrl)

		users.EXPECT().GetByUsername(gomock.Any(), "carol").Return(channel, nil)
		cache.EXPECT().Get(gomock.Any(), channel.UserID).Return(nil, errors.New("redis down"))
		subs.EXPECT().CountSubscribers(gomock.Any(), channel.UserID).Return(int64(1), nil)
		subs.EXPECT().CountSubscribedTo(gomock.Any(), channel.UserID).Return(int64(3), nil)
		cache.EXPECT().Set(gomock.Any(), channel.UserID, gomock.Any()).Return(errors.New("redis down"))

		svc := services.NewChannelService(users, subs, nil, cache)
		profile, err := svc.GetChannelProfile(ctx, "carol", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), profile.ChannelsSubscribedToCount)
	})

	t.Run("errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		users := services.NewMockUserReader(ctrl)
		svc := services.NewChannelService(users, nil, nil, nil)

		_, err := svc.GetChannelProfile(ctx, "  ", nil)
		assert.ErrorIs(t, err, services.ErrMissingUsername)

		users.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, nil)
		_, err = svc.GetChannelProfile(ctx, "ghost", nil)
		assert.ErrorIs(t, err, services.ErrChannelNotFound)
	})
}

func TestChannelService_Subscribe(t *testing.T) {
	ctx := context.Background()
	channel := &models.UserDB{UserID: uuid.New(), Username: "carol"}
	subscriber := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := services.NewMockUserReader(ctrl)
	writer := services.NewMockSubscriptionWriter(ctrl)
	cache := services.NewMockChannelStatsCache(ctrl)
	svc := services.NewChannelService(users, nil, writer, cache)

	users.EXPECT().GetByUsername(gomock.Any(), "carol").Return(channel, nil).Times(3)

	writer.EXPECT().Subscribe(gomock.Any(), subscriber, channel.UserID).Return(true, nil)
	cache.EXPECT().Invalidate(gomock.Any(), subscriber, channel.UserID).Return(nil)
	created, err := svc.Subscribe(ctx, subscriber, "carol")
	require.NoError(t, err)
	assert.True(t, created)

	// повторная подписка не создает ребро
	writer.EXPECT().Subscribe(gomock.Any(), subscriber, channel.UserID).Return(false, nil)
	created, err = svc.Subscribe(ctx, subscriber, "carol")
	require.NoError(t, err)
	assert.False(t, created)

	writer.EXPECT().Unsubscribe(gomock.Any(), subscriber, channel.UserID).Return(true, nil)
	cache.EXPECT().Invalidate(gomock.Any(), subscriber, channel.UserID).Return(errors.New("redis down"))
	removed, err := svc.Unsubscribe(ctx, subscriber, "carol")
	require.NoError(t, err)
	assert.True(t, removed)

	users.EXPECT().GetByUsername(gomock.Any(), "carol").Return(channel, nil)
	_, err = svc.Subscribe(ctx, channel.UserID, "carol")
	assert.ErrorIs(t, err, services.ErrSelfSubscription)
}

// memRelations is an in-memory subscription graph.
type memRelations struct {
	mu    sync.Mutex
	edges map[[2]uuid.UUID]struct{}
}

func (m *memRelations) CountSubscribers(_ context.Context, channelID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for e := range m.edges {
		if e[1] == channelID {
			n++
		}
	}
	return n, nil
}

func (m *memRelations) CountSubscribedTo(_ context.Context, subscriberID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for e := range m.edges {
		if e[0] == subscriberID {
			n++
		}
	}
	return n, nil
}

func (m *memRelations) Exists(_ context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.edges[[2]uuid.UUID{subscriberID, channelID}]
	return ok, nil
}

func (m *memRelations) Subscribe(_ context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uuid.UUID{subscriberID, channelID}
	if _, ok := m.edges[key]; ok {
		return false, nil
	}
	m.edges[key] = struct{}{}
	return true, nil
}

func (m *memRelations) Unsubscribe(_ context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uuid.UUID{subscriberID, channelID}
	_, ok := m.edges[key]
	delete(m.edges, key)
	return ok, nil
}

type noCache struct{}

func (noCache) Get(context.Context, uuid.UUID) (*models.ChannelStats, error) {
	return nil, repositories.ErrCacheMiss
}
func (noCache) Set(context.Context, uuid.UUID, models.ChannelStats) error { return nil }
func (noCache) Invalidate(context.Context, ...uuid.UUID) error            { return nil }

func TestChannelService_ProfileCounts(t *testing.T) {
	ctx := context.Background()
	a := &models.UserDB{UserID: uuid.New(), Username: "alice"}
	b := &models.UserDB{UserID: uuid.New(), Username: "bob"}
	c := &models.UserDB{UserID: uuid.New(), Username: "carol"}
	users := newMemUsers(a, b, c)
	rel := &memRelations{edges: make(map[[2]uuid.UUID]struct{})}
	svc := services.NewChannelService(users, rel, rel, noCache{})

	_, err := svc.Subscribe(ctx, a.UserID, "carol")
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, b.UserID, "carol")
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, a.UserID, "carol")
	require.NoError(t, err)

	profile, err := svc.GetChannelProfile(ctx, "carol", &a.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.SubscribersCount)
	assert.Equal(t, int64(0), profile.ChannelsSubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	profile, err = svc.GetChannelProfile(ctx, "alice", &c.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.SubscribersCount)
	assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
	assert.False(t, profile.IsSubscribed)

	profile, err = svc.GetChannelProfile(ctx, "carol", &c.UserID)
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)

	_, err = svc.Unsubscribe(ctx, b.UserID, "carol")
	require.NoError(t, err)
	profile, err = svc.GetChannelProfile(ctx, "carol", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscribersCount)
}
