package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
	"github.com/sbilibin2017/gw-videotube/internal/services"
)

//go:generate mockgen -source=register.go -destination=register_mock.go -package=handlers

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
}

// NewRegisterHandler returns an HTTP handler for user registration.
// Uploaded images are spooled into uploadDir before they are handed to the service.
// @Summary Register a new user
// @Description Creates a new account from a multipart form. Username and email must be unique, avatar is required.
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Param fullName formData string true "Full name"
// @Param email formData string true "Email"
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param avatar formData file true "Avatar image"
// @Param coverImage formData file false "Cover image"
// @Success 201 {object} models.User "User successfully registered"
// @Failure 400 {object} responses.ErrorResponse "Invalid request"
// @Failure 409 {object} responses.ErrorResponse "Username or email already exists"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /register [post]
func NewRegisterHandler(svc Registerer, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			responses.WriteBadRequest(w, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		avatarPath, err := saveFormFile(r, "avatar", uploadDir)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		coverPath, err := saveFormFile(r, "coverImage", uploadDir)
		if err != nil {
			removeFiles(avatarPath)
			responses.WriteError(r.Context(), w, err)
			return
		}
		defer removeFiles(avatarPath, coverPath)

		user, err := svc.Register(r.Context(), services.RegisterInput{
			FullName:       r.FormValue("fullName"),
			Email:          r.FormValue("email"),
			Username:       r.FormValue("username"),
			Password:       r.FormValue("password"),
			AvatarPath:     avatarPath,
			CoverImagePath: coverPath,
		})
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}

		responses.WriteJSON(w, http.StatusCreated, user)
	}
}
