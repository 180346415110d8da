package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SubscriptionReadRepository answers queries over subscriber -> channel edges.
type SubscriptionReadRepository struct {
	db *sqlx.DB
}

func NewSubscriptionReadRepository(db *sqlx.DB) *SubscriptionReadRepository {
	return &SubscriptionReadRepository{db: db}
}

// CountSubscribers returns the number of edges pointing at channelID.
func (r *SubscriptionReadRepository) CountSubscribers(ctx context.Context, channelID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`
	return r.count(ctx, query, channelID)
}

// CountSubscribedTo returns the number of edges leaving subscriberID.
func (r *SubscriptionReadRepository) CountSubscribedTo(ctx context.Context, subscriberID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`
	return r.count(ctx, query, subscriberID)
}

// Exists reports whether subscriberID follows channelID.
func (r *SubscriptionReadRepository) Exists(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE subscriber_id = $1 AND channel_id = $2
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, subscriberID, channelID)
	logQuery(ctx, query, []any{subscriberID, channelID}, exists, err)

	return exists, err
}

func (r *SubscriptionReadRepository) count(ctx context.Context, query string, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, query, id)
	logQuery(ctx, query, []any{id}, n, err)

	return n, err
}

// SubscriptionWriteRepository creates and deletes edges.
type SubscriptionWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewSubscriptionWriteRepository(db *sqlx.DB, txGetter TxGetter) *SubscriptionWriteRepository {
	return &SubscriptionWriteRepository{db: db, txGetter: txGetter}
}

// Subscribe creates the edge. Returns false when it already existed.
func (r *SubscriptionWriteRepository) Subscribe(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	query := `
		INSERT INTO subscriptions (subscription_id, subscriber_id, channel_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (subscriber_id, channel_id) DO NOTHING`
	return r.exec(ctx, query, uuid.New(), subscriberID, channelID)
}

// Unsubscribe deletes the edge. Returns false when there was none.
func (r *SubscriptionWriteRepository) Unsubscribe(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	query := `
		DELETE FROM subscriptions
		WHERE subscriber_id = $1 AND channel_id = $2`
	return r.exec(ctx, query, subscriberID, channelID)
}

func (r *SubscriptionWriteRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(ctx, query, args, rowsAffected, err)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
