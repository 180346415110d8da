package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sbilibin2017/gw-videotube/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedMsg  string
	}{
		{"validation", services.ErrAllFieldsRequired, http.StatusBadRequest, "all fields are required"},
		{"wrapped authentication", fmt.Errorf("%w: token is expired", services.ErrInvalidCredential), http.StatusUnauthorized, "invalid token"},
		{"not found", services.ErrChannelNotFound, http.StatusNotFound, "channel does not exist"},
		{"conflict", services.ErrUserAlreadyExists, http.StatusConflict, "username or email already exists"},
		{"dependency", errors.New("pq: password authentication failed for user secret"), http.StatusInternalServerError, InternalErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(context.Background(), rr, tt.err)

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, ErrorResponse{Status: tt.expectedCode, Message: tt.expectedMsg}, body)
		})
	}
}

func TestWriteMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteMessage(rr, http.StatusOK, "ok")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"ok"}`, rr.Body.String())
}
