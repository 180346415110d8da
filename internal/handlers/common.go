package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sbilibin2017/gw-videotube/internal/jwt"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/middlewares"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
	"github.com/sbilibin2017/gw-videotube/internal/services"
)

// maxUploadSize bounds multipart bodies.
const maxUploadSize = 10 << 20

// CookieConfig controls the credential cookies set on login and refresh.
type CookieConfig struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

func setAuthCookies(w http.ResponseWriter, cfg CookieConfig, pair models.TokenPair) {
	http.SetCookie(w, authCookie(jwt.AccessCookieName, pair.AccessToken, cfg.Secure, cfg.AccessMaxAge))
	http.SetCookie(w, authCookie(jwt.RefreshCookieName, pair.RefreshToken, cfg.Secure, cfg.RefreshMaxAge))
}

func clearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	for _, name := range []string{jwt.AccessCookieName, jwt.RefreshCookieName} {
		c := authCookie(name, "", cfg.Secure, 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func authCookie(name, value string, secure bool, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// currentUser returns the user attached by the auth middleware, or writes 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middlewares.UserFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), w, services.ErrUnauthenticated)
		return nil, false
	}
	return user, true
}

// saveFormFile copies the uploaded file of field into dir and returns its path.
// A missing file yields an empty path and no error.
func saveFormFile(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	tmp, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(filepath.Base(header.Filename)))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// removeFiles deletes local temp files that the blob store did not consume.
func removeFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Log.Warnw("failed to remove temp file", "path", p, "err", err)
		}
	}
}
