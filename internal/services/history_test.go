package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_GetWatchHistory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	ownerA, ownerGone := uuid.New(), uuid.New()
	v1 := models.Video{VideoID: uuid.New(), OwnerID: ownerA, Title: "first"}
	v2 := models.Video{VideoID: uuid.New(), OwnerID: ownerGone, Title: "second"}
	missing := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := services.NewMockUserReader(ctrl)
	videos := services.NewMockVideoReader(ctrl)
	history := services.NewMockWatchHistoryStore(ctrl)

	users.EXPECT().GetByID(gomock.Any(), userID).Return(&models.UserDB{UserID: userID}, nil)
	history.EXPECT().ListVideoIDs(gomock.Any(), userID).Return([]uuid.UUID{v2.VideoID, missing, v1.VideoID, v2.VideoID}, nil)
	videos.EXPECT().GetByIDs(gomock.Any(), []uuid.UUID{v2.VideoID, missing, v1.VideoID}).Return([]models.Video{v1, v2}, nil)
	users.EXPECT().GetOwnersByIDs(gomock.Any(), gomock.Any()).Return([]models.VideoOwner{
		{UserID: ownerA, Username: "alice", FullName: "Alice", Avatar: "https://cdn/a.png"},
	}, nil)

	svc := services.NewHistoryService(users, videos, history)
	items, err := svc.GetWatchHistory(ctx, userID)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, "second", items[0].Title)
	assert.Nil(t, items[0].Owner)
	assert.Equal(t, "first", items[1].Title)
	require.NotNil(t, items[1].Owner)
	assert.Equal(t, "alice", items[1].Owner.Username)
	assert.Equal(t, "second", items[2].Title)
}

func TestHistoryService_GetWatchHistory_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := services.NewMockUserReader(ctrl)
	history := services.NewMockWatchHistoryStore(ctrl)
	userID := uuid.New()

	users.EXPECT().GetByID(gomock.Any(), userID).Return(&models.UserDB{UserID: userID}, nil)
	history.EXPECT().ListVideoIDs(gomock.Any(), userID).Return(nil, nil)

	svc := services.NewHistoryService(users, nil, history)
	items, err := svc.GetWatchHistory(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHistoryService_GetWatchHistory_Errors(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	users := services.NewMockUserReader(ctrl)
	videos := services.NewMockVideoReader(ctrl)
	history := services.NewMockWatchHistoryStore(ctrl)
	svc := services.NewHistoryService(users, videos, history)

	users.EXPECT().GetByID(gomock.Any(), userID).Return(nil, nil)
	_, err := svc.GetWatchHistory(ctx, userID)
	assert.ErrorIs(t, err, services.ErrAccountNotFound)

	users.EXPECT().GetByID(gomock.Any(), userID).Return(&models.UserDB{UserID: userID}, nil)
	history.EXPECT().ListVideoIDs(gomock.Any(), userID).Return([]uuid.UUID{uuid.New()}, nil)
	videos.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
	_, err = svc.GetWatchHistory(ctx, userID)
	assert.EqualError(t, err, "db down")
}

func TestHistoryService_RecordView(t *testing.T) {
	ctx := context.Background()
	userID, videoID := uuid.New(), uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	videos := services.NewMockVideoReader(ctrl)
	history := services.NewMockWatchHistoryStore(ctrl)
	svc := services.NewHistoryService(nil, videos, history)

	videos.EXPECT().GetByID(gomock.Any(), videoID).Return(&models.Video{VideoID: videoID}, nil)
	history.EXPECT().Append(gomock.Any(), userID, videoID).Return(nil)
	assert.NoError(t, svc.RecordView(ctx, userID, videoID))

	videos.EXPECT().GetByID(gomock.Any(), videoID).Return(nil, nil)
	assert.ErrorIs(t, svc.RecordView(ctx, userID, videoID), services.ErrVideoNotFound)
}
