package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/jwt"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
	"github.com/sbilibin2017/gw-videotube/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookies = CookieConfig{Secure: true, AccessMaxAge: time.Minute, RefreshMaxAge: time.Hour}

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSvc := NewMockLoginer(ctrl)
	user := &models.User{UserID: uuid.New(), Username: "john"}

	tests := []struct {
		name         string
		inputBody    interface{}
		mockSetup    func()
		expectedCode int
		expectedBody interface{}
	}{
		{
			name: "success",
			inputBody: LoginRequest{
				Username: "john",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john", "", "pass123").
					Return(&models.LoginResult{
						User:      user,
						TokenPair: models.TokenPair{AccessToken: "ACCESS", RefreshToken: "REFRESH"},
					}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: &LoginResponse{
				User:         user,
				AccessToken:  "ACCESS",
				RefreshToken: "REFRESH",
			},
		},
		{
			name:         "invalid JSON",
			inputBody:    "{invalid json}",
			mockSetup:    func() {},
			expectedCode: http.StatusBadRequest,
			expectedBody: &responses.ErrorResponse{
				Status:  http.StatusBadRequest,
				Message: "invalid request body",
			},
		},
		{
			name: "wrong credentials",
			inputBody: LoginRequest{
				Email:    "john@example.com",
				Password: "wrongpass",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "", "john@example.com", "wrongpass").
					Return(nil, services.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: &responses.ErrorResponse{
				Status:  http.StatusUnauthorized,
				Message: "invalid username or password",
			},
		},
		{
			name: "user does not exist",
			inputBody: LoginRequest{
				Username: "ghost",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "ghost", "", "pass123").
					Return(nil, services.ErrAccountNotFound)
			},
			expectedCode: http.StatusNotFound,
			expectedBody: &responses.ErrorResponse{
				Status:  http.StatusNotFound,
				Message: "user does not exist",
			},
		},
		{
			name: "internal error",
			inputBody: LoginRequest{
				Username: "john",
				Password: "pass123",
			},
			mockSetup: func() {
				mockSvc.EXPECT().
					Login(gomock.Any(), "john", "", "pass123").
					Return(nil, errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: &responses.ErrorResponse{
				Status:  http.StatusInternalServerError,
				Message: "Internal server error",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			var bodyBytes []byte
			switch v := tt.inputBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, _ = json.Marshal(v)
			}

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
			w := httptest.NewRecorder()

			handler := NewLoginHandler(mockSvc, testCookies)
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)

			var respBody interface{}
			switch tt.expectedCode {
			case http.StatusOK:
				respBody = &LoginResponse{}
			default:
				respBody = &responses.ErrorResponse{}
			}
			err := json.Unmarshal(w.Body.Bytes(), respBody)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedBody, respBody)

			if tt.expectedCode == http.StatusOK {
				cookies := map[string]*http.Cookie{}
				for _, c := range w.Result().Cookies() {
					cookies[c.Name] = c
				}
				require.Contains(t, cookies, jwt.AccessCookieName)
				require.Contains(t, cookies, jwt.RefreshCookieName)
				assert.Equal(t, "ACCESS", cookies[jwt.AccessCookieName].Value)
				assert.True(t, cookies[jwt.AccessCookieName].HttpOnly)
				assert.True(t, cookies[jwt.AccessCookieName].Secure)
				assert.Equal(t, http.SameSiteStrictMode, cookies[jwt.RefreshCookieName].SameSite)
				assert.Equal(t, 3600, cookies[jwt.RefreshCookieName].MaxAge)
			}
		})
	}
}
