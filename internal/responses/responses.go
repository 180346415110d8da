package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/services"
)

// InternalErrorMessage is rendered for every dependency failure.
const InternalErrorMessage = "Internal server error"

// ErrorResponse is the body of every failed request.
// swagger:model ErrorResponse
type ErrorResponse struct {
	// HTTP status code
	// default: 400
	Status int `json:"status"`

	// Error message
	// default: all fields are required
	Message string `json:"message"`
}

// MessageResponse is the body of requests that return no data.
// swagger:model MessageResponse
type MessageResponse struct {
	// default: ok
	Message string `json:"message"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "err", err)
	}
}

// WriteMessage writes a MessageResponse.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// WriteError renders err by its kind. Dependency failures never expose their cause.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := services.KindOf(err)
	status := kind.HTTPStatus()

	msg := InternalErrorMessage
	var se *services.Error
	if errors.As(err, &se) && kind != services.KindDependency {
		msg = se.Message
	} else {
		logger.FromContext(ctx).Errorw("internal server error", "err", err)
	}

	WriteJSON(w, status, ErrorResponse{Status: status, Message: msg})
}

// WriteBadRequest renders a validation failure that never reached the services.
func WriteBadRequest(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Status: http.StatusBadRequest, Message: msg})
}
