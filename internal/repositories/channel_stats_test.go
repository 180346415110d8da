package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChannelStatsCacheRepository_LogFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Log
	logger.Log = zap.New(core).Sugar()
	defer func() { logger.Log = prev }()

	// nothing listens here, every command fails fast
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer rdb.Close()

	repo := NewChannelStatsCacheRepository(rdb, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.Get(ctx, id)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, repo.Set(ctx, id, models.ChannelStats{SubscribersCount: 1}))
	assert.Error(t, repo.Invalidate(ctx, id))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "cache get", entries[0].Message)
	assert.Equal(t, channelStatsKey(id), entries[0].ContextMap()["key"])
	assert.Equal(t, "cache set", entries[1].Message)
	assert.Equal(t, channelStatsKey(id), entries[1].ContextMap()["key"])
	assert.Equal(t, "cache invalidate", entries[2].Message)
	assert.Contains(t, entries[2].ContextMap(), "keys")
	assert.Contains(t, entries[2].ContextMap(), "error")
}

func TestChannelStatsCacheRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	// Start Redis container
	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx).Err())

	repo := NewChannelStatsCacheRepository(rdb, 2*time.Second)

	t.Run("Set and Get stats", func(t *testing.T) {
		id := uuid.New()
		stats := models.ChannelStats{SubscribersCount: 7, ChannelsSubscribedToCount: 2}

		require.NoError(t, repo.Set(ctx, id, stats))

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, stats, *got)
	})

	t.Run("Get missing key returns ErrCacheMiss", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Invalidate drops every given channel", func(t *testing.T) {
		a, b := uuid.New(), uuid.New()
		require.NoError(t, repo.Set(ctx, a, models.ChannelStats{SubscribersCount: 1}))
		require.NoError(t, repo.Set(ctx, b, models.ChannelStats{SubscribersCount: 2}))

		require.NoError(t, repo.Invalidate(ctx, a, b))
		require.NoError(t, repo.Invalidate(ctx))

		_, err := repo.Get(ctx, a)
		assert.ErrorIs(t, err, ErrCacheMiss)
		_, err = repo.Get(ctx, b)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Cached value expires", func(t *testing.T) {
		id := uuid.New()
		require.NoError(t, repo.Set(ctx, id, models.ChannelStats{SubscribersCount: 1}))

		// Wait for expiration (2s)
		time.Sleep(3 * time.Second)

		_, err := repo.Get(ctx, id)
		assert.ErrorIs(t, err, ErrCacheMiss)
	})
}
