package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// WatchHistoryRepository stores the ordered list of videos a user watched.
type WatchHistoryRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewWatchHistoryRepository(db *sqlx.DB, txGetter TxGetter) *WatchHistoryRepository {
	return &WatchHistoryRepository{db: db, txGetter: txGetter}
}

// ListVideoIDs returns the watched video IDs in append order, repeats included.
func (r *WatchHistoryRepository) ListVideoIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
		SELECT video_id
		FROM watch_history
		WHERE user_id = $1
		ORDER BY id`

	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query, userID)
	logQuery(ctx, query, []any{userID}, len(ids), err)

	return ids, err
}

// Append adds videoID to the end of the user's history.
func (r *WatchHistoryRepository) Append(ctx context.Context, userID, videoID uuid.UUID) error {
	const query = `
		INSERT INTO watch_history (user_id, video_id, watched_at)
		VALUES ($1, $2, NOW())`

	_, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, userID, videoID)
	logQuery(ctx, query, []any{userID, videoID}, nil, err)

	return err
}
