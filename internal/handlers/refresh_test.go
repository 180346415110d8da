package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sbilibin2017/gw-videotube/internal/jwt"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRefreshHandler(t *testing.T) {
	pair := &models.TokenPair{AccessToken: "A2", RefreshToken: "R2"}

	tests := []struct {
		name         string
		cookie       string
		body         string
		mockSetup    func(m *MockRefresher)
		expectedCode int
	}{
		{
			name:   "cookie wins over body",
			cookie: "R1",
			body:   `{"refreshToken":"other"}`,
			mockSetup: func(m *MockRefresher) {
				m.EXPECT().Refresh(gomock.Any(), "R1").Return(pair, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "token in body",
			body: `{"refreshToken":"R1"}`,
			mockSetup: func(m *MockRefresher) {
				m.EXPECT().Refresh(gomock.Any(), "R1").Return(pair, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "no token at all",
			mockSetup: func(m *MockRefresher) {
				m.EXPECT().Refresh(gomock.Any(), "").Return(nil, services.ErrMissingCredential)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "reused token",
			cookie: "R0",
			mockSetup: func(m *MockRefresher) {
				m.EXPECT().Refresh(gomock.Any(), "R0").Return(nil, services.ErrStaleCredential)
			},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "broken body",
			body:         `{`,
			mockSetup:    func(*MockRefresher) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := NewMockRefresher(ctrl)
			tt.mockSetup(svc)

			req := httptest.NewRequest(http.MethodPost, "/refresh-token", strings.NewReader(tt.body))
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: jwt.RefreshCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			NewRefreshHandler(svc, testCookies).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				assert.JSONEq(t, `{"accessToken":"A2","refreshToken":"R2"}`, w.Body.String())
				assert.Len(t, w.Result().Cookies(), 2)
			}
		})
	}
}
