package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
)

//go:generate mockgen -source=account.go -destination=account_mock.go -package=handlers

// CurrentUserGetter returns the profile of the caller.
type CurrentUserGetter interface {
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// AccountDetailsUpdater changes name and email.
type AccountDetailsUpdater interface {
	UpdateAccountDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (*models.User, error)
}

// AvatarUpdater replaces the avatar image.
type AvatarUpdater interface {
	UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error)
}

// CoverImageUpdater replaces the cover image.
type CoverImageUpdater interface {
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error)
}

// UpdateAccountRequest represents the JSON body for account updates
// swagger:model UpdateAccountRequest
type UpdateAccountRequest struct {
	// required: true
	// default: John Doe
	FullName string `json:"fullName"`
	// required: true
	// default: john@example.com
	Email string `json:"email"`
}

// NewCurrentUserHandler returns the authenticated user's profile.
// @Summary Current user
// @Tags account
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} responses.ErrorResponse "Unauthorized request"
// @Router /current-user [get]
// @Security BearerAuth
func NewCurrentUserHandler(svc CurrentUserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		profile, err := svc.CurrentUser(r.Context(), user.UserID)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, profile)
	}
}

// NewUpdateAccountHandler changes full name and email.
// @Summary Update account details
// @Tags account
// @Accept json
// @Produce json
// @Param updateAccountRequest body handlers.UpdateAccountRequest true "New details"
// @Success 200 {object} models.User
// @Failure 400 {object} responses.ErrorResponse "All fields are required"
// @Failure 409 {object} responses.ErrorResponse "Email already exists"
// @Router /update-account [patch]
// @Security BearerAuth
func NewUpdateAccountHandler(svc AccountDetailsUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req UpdateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			responses.WriteBadRequest(w, "invalid request body")
			return
		}

		updated, err := svc.UpdateAccountDetails(r.Context(), user.UserID, req.FullName, req.Email)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, updated)
	}
}

// NewUpdateAvatarHandler replaces the avatar.
// @Summary Update avatar
// @Tags account
// @Accept multipart/form-data
// @Produce json
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} models.User
// @Failure 400 {object} responses.ErrorResponse "Avatar file is required"
// @Router /avatar [patch]
// @Security BearerAuth
func NewUpdateAvatarHandler(svc AvatarUpdater, uploadDir string) http.HandlerFunc {
	return newImageHandler("avatar", uploadDir, svc.UpdateAvatar)
}

// NewUpdateCoverImageHandler replaces the cover image.
// @Summary Update cover image
// @Tags account
// @Accept multipart/form-data
// @Produce json
// @Param coverImage formData file true "Cover image"
// @Success 200 {object} models.User
// @Failure 400 {object} responses.ErrorResponse "Cover image file is required"
// @Router /cover-image [patch]
// @Security BearerAuth
func NewUpdateCoverImageHandler(svc CoverImageUpdater, uploadDir string) http.HandlerFunc {
	return newImageHandler("coverImage", uploadDir, svc.UpdateCoverImage)
}

func newImageHandler(
	field, uploadDir string,
	update func(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			responses.WriteBadRequest(w, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		path, err := saveFormFile(r, field, uploadDir)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		defer removeFiles(path)

		updated, err := update(r.Context(), user.UserID, path)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, updated)
	}
}
