package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var videoRowColumns = []string{
	"video_id", "owner_id", "video_file", "thumbnail", "title", "description",
	"duration", "views", "is_published", "created_at", "updated_at",
}

func TestVideoReadRepository(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewVideoReadRepository(db)
	v1, v2, owner := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM videos WHERE video_id = \$1`).
		WithArgs(v1).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).
			AddRow(v1.String(), owner.String(), "https://cdn/v.mp4", "https://cdn/t.png", "first", "", 12.5, 3, true, now, now))
	video, err := repo.GetByID(ctx, v1)
	require.NoError(t, err)
	assert.Equal(t, owner, video.OwnerID)
	assert.Equal(t, 12.5, video.Duration)

	mock.ExpectQuery(`FROM videos WHERE video_id = \$1`).
		WillReturnRows(sqlmock.NewRows(videoRowColumns))
	video, err = repo.GetByID(ctx, v2)
	require.NoError(t, err)
	assert.Nil(t, video)

	videos, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, videos)

	mock.ExpectQuery(`FROM videos WHERE video_id IN \(\$1, \$2\)`).
		WithArgs(v1, v2).
		WillReturnRows(sqlmock.NewRows(videoRowColumns).
			AddRow(v1.String(), owner.String(), "https://cdn/v.mp4", "https://cdn/t.png", "first", "", 12.5, 3, true, now, now))
	videos, err = repo.GetByIDs(ctx, []uuid.UUID{v1, v2})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "first", videos[0].Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWatchHistoryRepository(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewWatchHistoryRepository(db, nil)
	userID, v1, v2 := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectExec(`INSERT INTO watch_history`).
		WithArgs(userID, v1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Append(ctx, userID, v1))

	mock.ExpectQuery(`SELECT video_id\s+FROM watch_history\s+WHERE user_id = \$1\s+ORDER BY id`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"video_id"}).
			AddRow(v1.String()).
			AddRow(v2.String()).
			AddRow(v1.String()))
	ids, err := repo.ListVideoIDs(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{v1, v2, v1}, ids)

	assert.NoError(t, mock.ExpectationsWereMet())
}
