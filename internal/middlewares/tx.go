package middlewares

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
)

var errCommitFailed = errors.New("failed to commit transaction")

// TxMiddleware wraps an HTTP handler with a database transaction.
// The response is held back until the transaction is finished: statuses below 400
// commit, everything else rolls back. Hooks registered with AfterCommit run only
// once the commit succeeded.
func TxMiddleware(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.FromContext(ctx)

			tx, err := db.BeginTxx(ctx, nil)
			if err != nil {
				log.Errorw("failed to begin transaction", "error", err)
				responses.WriteError(ctx, w, err)
				return
			}

			defer func() {
				if rec := recover(); rec != nil {
					tx.Rollback()
					panic(rec)
				}
			}()

			hooks := &afterCommitHooks{}
			txCtx := context.WithValue(setTxToContext(ctx, tx), afterCommitKey{}, hooks)

			bw := &bufferedResponseWriter{ResponseWriter: w, header: make(http.Header)}
			next.ServeHTTP(bw, r.WithContext(txCtx))

			if bw.status() >= http.StatusBadRequest {
				if err := tx.Rollback(); err != nil {
					log.Errorw("failed to rollback transaction", "error", err)
				}
				bw.header.Del("Set-Cookie")
				bw.flush()
				return
			}

			if err := tx.Commit(); err != nil {
				log.Errorw("failed to commit transaction", "error", err)
				responses.WriteError(ctx, w, errCommitFailed)
				return
			}
			bw.flush()
			hooks.run(ctx)
		})
	}
}

// bufferedResponseWriter keeps headers, status and body until flush.
type bufferedResponseWriter struct {
	http.ResponseWriter
	header     http.Header
	statusCode int
	body       bytes.Buffer
}

func (bw *bufferedResponseWriter) Header() http.Header {
	return bw.header
}

func (bw *bufferedResponseWriter) WriteHeader(code int) {
	if bw.statusCode == 0 {
		bw.statusCode = code
	}
}

func (bw *bufferedResponseWriter) Write(b []byte) (int, error) {
	if bw.statusCode == 0 {
		bw.statusCode = http.StatusOK
	}
	return bw.body.Write(b)
}

func (bw *bufferedResponseWriter) status() int {
	if bw.statusCode == 0 {
		return http.StatusOK
	}
	return bw.statusCode
}

func (bw *bufferedResponseWriter) flush() {
	dst := bw.ResponseWriter.Header()
	for k, v := range bw.header {
		dst[k] = v
	}
	bw.ResponseWriter.WriteHeader(bw.status())
	if _, err := bw.ResponseWriter.Write(bw.body.Bytes()); err != nil {
		logger.Log.Errorw("failed to write response", "error", err)
	}
}

type afterCommitKey struct{}

type afterCommitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

func (h *afterCommitHooks) run(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ctx)
	}
}

// AfterCommit defers fn until the request transaction in ctx has committed.
// Without a transaction in ctx fn runs immediately. Hooks of rolled back
// transactions are dropped.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	hooks, ok := ctx.Value(afterCommitKey{}).(*afterCommitHooks)
	if !ok {
		fn(ctx)
		return
	}
	hooks.mu.Lock()
	hooks.fns = append(hooks.fns, fn)
	hooks.mu.Unlock()
}

// contextKey is an unexported type for keys in context
type contextKey struct{}

var txKey = contextKey{}

// setTxToContext stores a transaction in the context
func setTxToContext(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// GetTxFromContext retrieves the transaction from the context. Returns nil if not present.
func GetTxFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey).(*sqlx.Tx)
	return tx
}
