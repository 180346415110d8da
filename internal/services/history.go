package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/models"
)

//go:generate mockgen -source=history.go -destination=history_mock.go -package=services

// WatchHistoryStore holds the ordered list of watched video ids per user.
type WatchHistoryStore interface {
	ListVideoIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Append(ctx context.Context, userID, videoID uuid.UUID) error
}

// VideoReader defines read-only operations for videos.
type VideoReader interface {
	GetByID(ctx context.Context, videoID uuid.UUID) (*models.Video, error)
	GetByIDs(ctx context.Context, videoIDs []uuid.UUID) ([]models.Video, error)
}

// HistoryService resolves watch history into videos with their owners.
type HistoryService struct {
	users   UserReader
	videos  VideoReader
	history WatchHistoryStore
}

// NewHistoryService creates a new HistoryService instance.
func NewHistoryService(users UserReader, videos VideoReader, history WatchHistoryStore) *HistoryService {
	return &HistoryService{users: users, videos: videos, history: history}
}

// GetWatchHistory returns the watched videos of userID in history order.
// Ids that no longer resolve to a video are skipped; a video whose owner is gone
// is returned with a nil owner.
func (svc *HistoryService) GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]models.WatchHistoryItem, error) {
	log := logger.FromContext(ctx)

	user, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		log.Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	ids, err := svc.history.ListVideoIDs(ctx, userID)
	if err != nil {
		log.Errorw("failed to list watch history", "user_id", userID, "err", err)
		return nil, err
	}
	items := make([]models.WatchHistoryItem, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	videos, err := svc.videos.GetByIDs(ctx, distinct(ids))
	if err != nil {
		log.Errorw("failed to get videos", "user_id", userID, "err", err)
		return nil, err
	}
	videoByID := make(map[uuid.UUID]models.Video, len(videos))
	ownerIDs := make([]uuid.UUID, 0, len(videos))
	for _, v := range videos {
		videoByID[v.VideoID] = v
		ownerIDs = append(ownerIDs, v.OwnerID)
	}

	ownerByID := make(map[uuid.UUID]models.VideoOwner)
	if len(ownerIDs) > 0 {
		owners, err := svc.users.GetOwnersByIDs(ctx, distinct(ownerIDs))
		if err != nil {
			log.Errorw("failed to get video owners", "user_id", userID, "err", err)
			return nil, err
		}
		for _, o := range owners {
			ownerByID[o.UserID] = o
		}
	}

	for _, id := range ids {
		v, ok := videoByID[id]
		if !ok {
			continue
		}
		item := models.WatchHistoryItem{Video: v}
		if o, ok := ownerByID[v.OwnerID]; ok {
			item.Owner = &o
		}
		items = append(items, item)
	}

	return items, nil
}

// RecordView appends videoID to the watch history of userID.
func (svc *HistoryService) RecordView(ctx context.Context, userID, videoID uuid.UUID) error {
	log := logger.FromContext(ctx)

	video, err := svc.videos.GetByID(ctx, videoID)
	if err != nil {
		log.Errorw("failed to get video", "video_id", videoID, "err", err)
		return err
	}
	if video == nil {
		return ErrVideoNotFound
	}

	if err := svc.history.Append(ctx, userID, videoID); err != nil {
		log.Errorw("failed to append watch history", "user_id", userID, "video_id", videoID, "err", err)
		return err
	}
	return nil
}

func distinct(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
