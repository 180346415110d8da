package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
)

//go:generate mockgen -source=history.go -destination=history_mock.go -package=handlers

// WatchHistoryGetter resolves the caller's watch history.
type WatchHistoryGetter interface {
	GetWatchHistory(ctx context.Context, userID uuid.UUID) ([]models.WatchHistoryItem, error)
}

// ViewRecorder appends a video to the caller's watch history.
type ViewRecorder interface {
	RecordView(ctx context.Context, userID, videoID uuid.UUID) error
}

// NewWatchHistoryHandler returns the caller's watch history, oldest first.
// @Summary Watch history
// @Tags history
// @Produce json
// @Success 200 {array} models.WatchHistoryItem
// @Failure 401 {object} responses.ErrorResponse "Unauthorized request"
// @Router /watch-history [get]
// @Security BearerAuth
func NewWatchHistoryHandler(svc WatchHistoryGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		items, err := svc.GetWatchHistory(r.Context(), user.UserID)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, items)
	}
}

// NewRecordViewHandler appends {videoID} to the caller's watch history.
// @Summary Record a view
// @Tags history
// @Produce json
// @Param videoID path string true "Video ID"
// @Success 201 {object} responses.MessageResponse
// @Failure 400 {object} responses.ErrorResponse "Invalid video id"
// @Failure 404 {object} responses.ErrorResponse "Video does not exist"
// @Router /watch-history/{videoID} [post]
// @Security BearerAuth
func NewRecordViewHandler(svc ViewRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		videoID, err := uuid.Parse(chi.URLParam(r, "videoID"))
		if err != nil {
			responses.WriteBadRequest(w, "invalid video id")
			return
		}

		if err := svc.RecordView(r.Context(), user.UserID, videoID); err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "View recorded")
	}
}
