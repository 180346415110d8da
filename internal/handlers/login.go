package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
)

//go:generate mockgen -source=login.go -destination=login_mock.go -package=handlers

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, username, email, password string) (*models.LoginResult, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Username, either this or email is required
	// default: john_doe
	Username string `json:"username"`

	// Email, either this or username is required
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Authenticate by username or email. Tokens are returned in the body and as HttpOnly cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login Request"
// @Success 200 {object} handlers.LoginResponse "Tokens issued"
// @Failure 400 {object} responses.ErrorResponse "Invalid request body"
// @Failure 401 {object} responses.ErrorResponse "Invalid username or password"
// @Failure 404 {object} responses.ErrorResponse "User does not exist"
// @Router /login [post]
func NewLoginHandler(svc Loginer, cookies CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			responses.WriteBadRequest(w, "invalid request body")
			return
		}

		res, err := svc.Login(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}

		setAuthCookies(w, cookies, res.TokenPair)
		responses.WriteJSON(w, http.StatusOK, LoginResponse{
			User:         res.User,
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
		})
	}
}
