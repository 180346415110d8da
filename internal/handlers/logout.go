package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
)

//go:generate mockgen -source=logout.go -destination=logout_mock.go -package=handlers

// Logouter revokes the stored refresh token.
type Logouter interface {
	Logout(ctx context.Context, userID uuid.UUID) error
}

// NewLogoutHandler returns an HTTP handler for logout.
// @Summary Logout
// @Description Revokes the refresh token and clears the credential cookies
// @Tags auth
// @Produce json
// @Success 200 {object} responses.MessageResponse
// @Failure 401 {object} responses.ErrorResponse "Unauthorized request"
// @Router /logout [post]
// @Security BearerAuth
func NewLogoutHandler(svc Logouter, cookies CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		if err := svc.Logout(r.Context(), user.UserID); err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}

		clearAuthCookies(w, cookies)
		responses.WriteMessage(w, http.StatusOK, "User logged out")
	}
}
