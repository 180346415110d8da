package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"go.uber.org/zap"
)

// LoggingMiddleware logs one line per request with its route pattern, status and duration.
// An incoming X-Request-ID is kept when it is a uuid; otherwise a new one is generated.
func LoggingMiddleware(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.New().String()
			}

			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Add request ID to context and headers for downstream handlers
			r = r.WithContext(logger.WithRequestID(r.Context(), reqID))
			w.Header().Set("X-Request-ID", reqID)

			next.ServeHTTP(rw, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			logf := log.Infow
			if rw.statusCode >= http.StatusInternalServerError {
				logf = log.Errorw
			}
			logf("request",
				"request_id", reqID,
				"method", r.Method,
				"route", route,
				"status", rw.statusCode,
				"response_size", strconv.Itoa(rw.size)+"B",
				"duration", time.Since(start),
			)
		})
	}
}

// StatusRecorder counts response status codes
type StatusRecorder interface {
	RecordHTTPStatus(statusCode int)
}

// MetricsMiddleware records the status code of every response.
func MetricsMiddleware(recorder StatusRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(rw, r)
			recorder.RecordHTTPStatus(rw.statusCode)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.size += size
	return size, err
}
