package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/middlewares"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/responses"
)

//go:generate mockgen -source=channel.go -destination=channel_mock.go -package=handlers

// ChannelProfileGetter builds a channel page for a viewer.
type ChannelProfileGetter interface {
	GetChannelProfile(ctx context.Context, username string, viewerID *uuid.UUID) (*models.ChannelProfile, error)
}

// Subscriber manages subscription edges.
type Subscriber interface {
	Subscribe(ctx context.Context, subscriberID uuid.UUID, channelUsername string) (bool, error)
	Unsubscribe(ctx context.Context, subscriberID uuid.UUID, channelUsername string) (bool, error)
}

// SubscriptionResponse reports the subscription state after a change
// swagger:model SubscriptionResponse
type SubscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
	// false when the request did not change anything
	Changed bool `json:"changed"`
}

// NewChannelProfileHandler returns the channel page of {username}.
// @Summary Channel profile
// @Description Counts of subscribers and subscriptions. isSubscribed is false for anonymous viewers.
// @Tags channel
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} models.ChannelProfile
// @Failure 400 {object} responses.ErrorResponse "Username is required"
// @Failure 404 {object} responses.ErrorResponse "Channel does not exist"
// @Router /c/{username} [get]
func NewChannelProfileHandler(svc ChannelProfileGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var viewerID *uuid.UUID
		if user, ok := middlewares.UserFromContext(r.Context()); ok {
			viewerID = &user.UserID
		}

		profile, err := svc.GetChannelProfile(r.Context(), chi.URLParam(r, "username"), viewerID)
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, profile)
	}
}

// NewSubscribeHandler subscribes the caller to {username}.
// @Summary Subscribe to channel
// @Tags channel
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} handlers.SubscriptionResponse
// @Failure 400 {object} responses.ErrorResponse "Cannot subscribe to own channel"
// @Failure 404 {object} responses.ErrorResponse "Channel does not exist"
// @Router /c/{username}/subscription [post]
// @Security BearerAuth
func NewSubscribeHandler(svc Subscriber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		created, err := svc.Subscribe(r.Context(), user.UserID, chi.URLParam(r, "username"))
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, SubscriptionResponse{Subscribed: true, Changed: created})
	}
}

// NewUnsubscribeHandler removes the caller's subscription to {username}.
// @Summary Unsubscribe from channel
// @Tags channel
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} handlers.SubscriptionResponse
// @Failure 404 {object} responses.ErrorResponse "Channel does not exist"
// @Router /c/{username}/subscription [delete]
// @Security BearerAuth
func NewUnsubscribeHandler(svc Subscriber) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		removed, err := svc.Unsubscribe(r.Context(), user.UserID, chi.URLParam(r, "username"))
		if err != nil {
			responses.WriteError(r.Context(), w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, SubscriptionResponse{Subscribed: false, Changed: removed})
	}
}
