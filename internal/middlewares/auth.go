package middlewares

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
	"github.com/sbilibin2017/gw-videotube/internal/services"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=middlewares

// Tokener extracts the access token from a request
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
}

// Authenticator resolves an access token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type userKey struct{}

// WithUser stores the authenticated user in ctx
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the user attached by AuthMiddleware or OptionalAuthMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey{}).(*models.User)
	return user, ok && user != nil
}

// AuthMiddleware rejects requests without a valid access token and attaches the
// resolved user to the request context.
func AuthMiddleware(tokener Tokener, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				logger.FromContext(ctx).Infow("authorization failed", "err", err)
				responses.WriteError(ctx, w, services.ErrUnauthenticated)
				return
			}

			user, err := auth.Authenticate(ctx, tokenString)
			if err != nil {
				if services.KindOf(err) == services.KindDependency {
					responses.WriteError(ctx, w, err)
					return
				}
				logger.FromContext(ctx).Infow("authorization failed", "err", err)
				responses.WriteError(ctx, w, services.ErrInvalidCredential)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

// OptionalAuthMiddleware attaches the user when a valid access token is presented
// and lets anonymous requests through otherwise.
func OptionalAuthMiddleware(tokener Tokener, auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, err := tokener.GetTokenFromRequest(ctx, r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(ctx, tokenString)
			if err != nil {
				if services.KindOf(err) == services.KindDependency {
					responses.WriteError(ctx, w, err)
					return
				}
				logger.FromContext(ctx).Debugw("ignoring invalid token on optional route", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}
