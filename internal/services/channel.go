package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/repositories"
)

//go:generate mockgen -source=channel.go -destination=channel_mock.go -package=services

// SubscriptionReader defines read-only operations on subscription edges.
type SubscriptionReader interface {
	CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID uuid.UUID) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
}

// SubscriptionWriter defines write operations on subscription edges.
type SubscriptionWriter interface {
	Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
}

// ChannelStatsCache caches relationship counts per account.
type ChannelStatsCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.ChannelStats, error)
	Set(ctx context.Context, userID uuid.UUID, stats models.ChannelStats) error
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

// ChannelService builds channel profiles and maintains subscriptions.
type ChannelService struct {
	users      UserReader
	subsReader SubscriptionReader
	subsWriter SubscriptionWriter
	cache      ChannelStatsCache
}

// NewChannelService creates a new ChannelService instance.
func NewChannelService(
	users UserReader,
	subsReader SubscriptionReader,
	subsWriter SubscriptionWriter,
	cache ChannelStatsCache,
) *ChannelService {
	return &ChannelService{
		users:      users,
		subsReader: subsReader,
		subsWriter: subsWriter,
		cache:      cache,
	}
}

// GetChannelProfile returns the channel page of username. viewerID is nil for
// anonymous viewers, who are never subscribed.
func (svc *ChannelService) GetChannelProfile(ctx context.Context, username string, viewerID *uuid.UUID) (*models.ChannelProfile, error) {
	log := logger.FromContext(ctx)

	username = normalizeUsername(username)
	if username == "" {
		return nil, ErrMissingUsername
	}

	channel, err := svc.users.GetByUsername(ctx, username)
	if err != nil {
		log.Errorw("failed to get channel", "username", username, "err", err)
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}

	stats, err := svc.stats(ctx, channel.UserID)
	if err != nil {
		return nil, err
	}

	var subscribed bool
	if viewerID != nil {
		subscribed, err = svc.subsReader.Exists(ctx, *viewerID, channel.UserID)
		if err != nil {
			log.Errorw("failed to check subscription", "viewer_id", *viewerID, "channel_id", channel.UserID, "err", err)
			return nil, err
		}
	}

	return &models.ChannelProfile{
		FullName:                  channel.FullName,
		Username:                  channel.Username,
		SubscribersCount:          stats.SubscribersCount,
		ChannelsSubscribedToCount: stats.ChannelsSubscribedToCount,
		IsSubscribed:              subscribed,
		Avatar:                    channel.Avatar,
		CoverImage:                channel.CoverImage,
		Email:                     channel.Email,
	}, nil
}

// stats reads the counts through the cache. Cache failures fall back to the store.
func (svc *ChannelService) stats(ctx context.Context, userID uuid.UUID) (*models.ChannelStats, error) {
	log := logger.FromContext(ctx)

	cached, err := svc.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repositories.ErrCacheMiss) {
		log.Warnw("channel stats cache unavailable", "user_id", userID, "err", err)
	}

	subscribers, err := svc.subsReader.CountSubscribers(ctx, userID)
	if err != nil {
		log.Errorw("failed to count subscribers", "user_id", userID, "err", err)
		return nil, err
	}
	subscribedTo, err := svc.subsReader.CountSubscribedTo(ctx, userID)
	if err != nil {
		log.Errorw("failed to count subscriptions", "user_id", userID, "err", err)
		return nil, err
	}

	stats := models.ChannelStats{
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
	}
	if err := svc.cache.Set(ctx, userID, stats); err != nil {
		log.Warnw("failed to cache channel stats", "user_id", userID, "err", err)
	}
	return &stats, nil
}

// Subscribe makes subscriberID follow the channel. It reports whether a new edge was created.
func (svc *ChannelService) Subscribe(ctx context.Context, subscriberID uuid.UUID, channelUsername string) (bool, error) {
	channelID, err := svc.resolveChannel(ctx, subscriberID, channelUsername)
	if err != nil {
		return false, err
	}

	created, err := svc.subsWriter.Subscribe(ctx, subscriberID, channelID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to subscribe", "subscriber_id", subscriberID, "channel_id", channelID, "err", err)
		return false, err
	}
	if created {
		svc.invalidate(ctx, subscriberID, channelID)
	}
	return created, nil
}

// Unsubscribe removes the edge. It reports whether an edge was removed.
func (svc *ChannelService) Unsubscribe(ctx context.Context, subscriberID uuid.UUID, channelUsername string) (bool, error) {
	channelID, err := svc.resolveChannel(ctx, subscriberID, channelUsername)
	if err != nil {
		return false, err
	}

	removed, err := svc.subsWriter.Unsubscribe(ctx, subscriberID, channelID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to unsubscribe", "subscriber_id", subscriberID, "channel_id", channelID, "err", err)
		return false, err
	}
	if removed {
		svc.invalidate(ctx, subscriberID, channelID)
	}
	return removed, nil
}

func (svc *ChannelService) resolveChannel(ctx context.Context, subscriberID uuid.UUID, username string) (uuid.UUID, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return uuid.Nil, ErrMissingUsername
	}

	channel, err := svc.users.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get channel", "username", username, "err", err)
		return uuid.Nil, err
	}
	if channel == nil {
		return uuid.Nil, ErrChannelNotFound
	}
	if channel.UserID == subscriberID {
		return uuid.Nil, ErrSelfSubscription
	}
	return channel.UserID, nil
}

func (svc *ChannelService) invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if err := svc.cache.Invalidate(ctx, userIDs...); err != nil {
		logger.FromContext(ctx).Warnw("failed to invalidate channel stats", "user_ids", userIDs, "err", err)
	}
}
