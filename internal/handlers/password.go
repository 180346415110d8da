package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
)

//go:generate mockgen -source=password.go -destination=password_mock.go -package=handlers

// PasswordChanger changes the password of an account.
type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error
}

// ChangePasswordRequest represents the JSON body for a password change
// swagger:model ChangePasswordRequest
type ChangePasswordRequest struct {
	// required: true
	OldPassword string `json:"oldPassword"`
	// required: true
	NewPassword string `json:"newPassword"`
}

// NewChangePasswordHandler returns an HTTP handler for password changes.
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Param changePasswordRequest body handlers.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse "Invalid request body"
// @Failure 401 {object} responses.ErrorResponse "Invalid old password"
// @Router /change-password [post]
// @Security BearerAuth
func NewChangePasswordHandler(svc PasswordChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			responses.WriteBadRequest(w, "invalid request body")
			return
		}

		if err := svc.ChangePassword(r.Context(), user.UserID, req.OldPassword, req.NewPassword); err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, "Password changed successfully")
	}
}
