package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/services"
	"github.com/stretchr/testify/assert"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestChannelProfileHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewMockChannelProfileGetter(ctrl)
	viewer := &models.User{UserID: uuid.New()}

	// anonymous viewer
	svc.EXPECT().GetChannelProfile(gomock.Any(), "carol", (*uuid.UUID)(nil)).
		Return(&models.ChannelProfile{Username: "carol", SubscribersCount: 2}, nil)
	w := httptest.NewRecorder()
	NewChannelProfileHandler(svc).ServeHTTP(w, withURLParam(httptest.NewRequest(http.MethodGet, "/c/carol", nil), "username", "carol"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isSubscribed":false`)

	svc.EXPECT().GetChannelProfile(gomock.Any(), "carol", &viewer.UserID).
		Return(&models.ChannelProfile{Username: "carol", IsSubscribed: true}, nil)
	w = httptest.NewRecorder()
	req := withUser(withURLParam(httptest.NewRequest(http.MethodGet, "/c/carol", nil), "username", "carol"), viewer)
	NewChannelProfileHandler(svc).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isSubscribed":true`)

	svc.EXPECT().GetChannelProfile(gomock.Any(), "ghost", gomock.Any()).Return(nil, services.ErrChannelNotFound)
	w = httptest.NewRecorder()
	NewChannelProfileHandler(svc).ServeHTTP(w, withURLParam(httptest.NewRequest(http.MethodGet, "/c/ghost", nil), "username", "ghost"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionHandlers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := NewMockSubscriber(ctrl)
	user := &models.User{UserID: uuid.New()}
	newReq := func(method string) *http.Request {
		return withUser(withURLParam(httptest.NewRequest(method, "/c/carol/subscription", nil), "username", "carol"), user)
	}

	svc.EXPECT().Subscribe(gomock.Any(), user.UserID, "carol").Return(true, nil)
	w := httptest.NewRecorder()
	NewSubscribeHandler(svc).ServeHTTP(w, newReq(http.MethodPost))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed":true,"changed":true}`, w.Body.String())

	svc.EXPECT().Subscribe(gomock.Any(), user.UserID, "carol").Return(false, services.ErrSelfSubscription)
	w = httptest.NewRecorder()
	NewSubscribeHandler(svc).ServeHTTP(w, newReq(http.MethodPost))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.EXPECT().Unsubscribe(gomock.Any(), user.UserID, "carol").Return(false, nil)
	w = httptest.NewRecorder()
	NewUnsubscribeHandler(svc).ServeHTTP(w, newReq(http.MethodDelete))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subscribed":false,"changed":false}`, w.Body.String())
}
