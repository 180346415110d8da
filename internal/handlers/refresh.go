package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sbilibin2017/gw-videotube/internal/jwt"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
)

//go:generate mockgen -source=refresh.go -destination=refresh_mock.go -package=handlers

// Refresher rotates refresh tokens.
type Refresher interface {
	Refresh(ctx context.Context, token string) (*models.TokenPair, error)
}

// RefreshRequest carries the refresh token when it is not sent as a cookie
// swagger:model RefreshRequest
type RefreshRequest struct {
	// default: REFRESH_TOKEN
	RefreshToken string `json:"refreshToken"`
}

// NewRefreshHandler returns an HTTP handler that exchanges a refresh token for a new pair.
// @Summary Refresh access token
// @Description Rotates the refresh token. The token is read from the refreshToken cookie, then from the body.
// @Tags auth
// @Accept json
// @Produce json
// @Param refreshRequest body handlers.RefreshRequest false "Refresh token"
// @Success 200 {object} models.TokenPair "New token pair"
// @Failure 400 {object} responses.ErrorResponse "Refresh token is required"
// @Failure 401 {object} responses.ErrorResponse "Refresh token is invalid, expired or used"
// @Router /refresh-token [post]
func NewRefreshHandler(svc Refresher, cookies CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(jwt.RefreshCookieName); err == nil {
			token = c.Value
		}
		if token == "" {
			var req RefreshRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				responses.WriteBadRequest(w, "invalid request body")
				return
			}
			token = req.RefreshToken
		}

		pair, err := svc.Refresh(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}

		setAuthCookies(w, cookies, *pair)
		responses.WriteJSON(w, http.StatusOK, pair)
	}
}
