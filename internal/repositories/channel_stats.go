package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/models"
)

// ErrCacheMiss is returned when no stats are cached for the channel.
var ErrCacheMiss = errors.New("channel stats not found in cache")

// ChannelStatsCacheRepository caches subscriber and subscription counts in Redis
type ChannelStatsCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached stats
}

// NewChannelStatsCacheRepository creates a new repository instance with the given TTL
func NewChannelStatsCacheRepository(client *redis.Client, expiration time.Duration) *ChannelStatsCacheRepository {
	return &ChannelStatsCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func channelStatsKey(userID uuid.UUID) string {
	return fmt.Sprintf("channel_stats:%s", userID)
}

// Get returns the cached stats of the channel, or ErrCacheMiss.
func (r *ChannelStatsCacheRepository) Get(ctx context.Context, userID uuid.UUID) (*models.ChannelStats, error) {
	key := channelStatsKey(userID)

	val, err := r.client.Get(ctx, key).Result()
	logger.FromContext(ctx).Infow(
		"cache get",
		"key", key,
		"value", val,
		"error", err,
	)
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var stats models.ChannelStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Set caches the stats of the channel with expiration
func (r *ChannelStatsCacheRepository) Set(ctx context.Context, userID uuid.UUID, stats models.ChannelStats) error {
	key := channelStatsKey(userID)

	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.FromContext(ctx).Infow(
		"cache set",
		"key", key,
		"stats", stats,
		"error", err,
	)

	return err
}

// Invalidate drops the cached stats of the given channels.
func (r *ChannelStatsCacheRepository) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, channelStatsKey(id))
	}
	err := r.client.Del(ctx, keys...).Err()

	logger.FromContext(ctx).Infow(
		"cache invalidate",
		"keys", keys,
		"error", err,
	)

	return err
}
