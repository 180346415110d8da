package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-videotube/internal/models"
)

const videoColumns = `video_id, owner_id, video_file, thumbnail, title, description,
	duration, views, is_published, created_at, updated_at`

type VideoReadRepository struct {
	db *sqlx.DB
}

func NewVideoReadRepository(db *sqlx.DB) *VideoReadRepository {
	return &VideoReadRepository{db: db}
}

// GetByID returns the video, or nil when there is none.
func (r *VideoReadRepository) GetByID(ctx context.Context, videoID uuid.UUID) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE video_id = $1`

	var video models.Video
	err := r.db.GetContext(ctx, &video, query, videoID)
	logQuery(ctx, query, []any{videoID}, video.VideoID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDs returns the videos with the given IDs in no particular order.
// Unknown IDs are skipped.
func (r *VideoReadRepository) GetByIDs(ctx context.Context, videoIDs []uuid.UUID) ([]models.Video, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+videoColumns+` FROM videos WHERE video_id IN (?)`, videoIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var videos []models.Video
	err = r.db.SelectContext(ctx, &videos, query, args...)
	logQuery(ctx, query, args, len(videos), err)

	return videos, err
}
