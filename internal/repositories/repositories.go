package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
)

// ErrUniqueViolation is returned when a write collides with a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

const pgUniqueViolation = "23505"

// TxGetter returns the transaction bound to ctx, or nil.
type TxGetter func(ctx context.Context) *sqlx.Tx

// executor picks the transaction from ctx when there is one.
func executor(ctx context.Context, db *sqlx.DB, txGetter TxGetter) sqlx.ExtContext {
	if txGetter != nil {
		if tx := txGetter(ctx); tx != nil {
			return tx
		}
	}
	return db
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrUniqueViolation
	}
	return err
}

// logQuery logs the query in a single line.
func logQuery(ctx context.Context, query string, args []any, result any, err error) {
	logger.FromContext(ctx).Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}
