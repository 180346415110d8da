package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/repositories"
	"github.com/sbilibin2017/gw-videotube/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_CurrentUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := services.NewMockUserReader(ctrl)
	svc := services.NewAccountService(reader, nil, nil)
	userID := uuid.New()

	reader.EXPECT().GetByID(gomock.Any(), userID).Return(&models.UserDB{UserID: userID, Username: "alice"}, nil)
	user, err := svc.CurrentUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	reader.EXPECT().GetByID(gomock.Any(), userID).Return(nil, nil)
	_, err = svc.CurrentUser(context.Background(), userID)
	assert.ErrorIs(t, err, services.ErrAccountNotFound)
}

func TestAccountService_UpdateAccountDetails(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	tests := []struct {
		name     string
		fullName string
		email    string
		result   *models.UserDB
		writeErr error
		wantErr  error
	}{
		{name: "success", fullName: " Alice B ", email: "new@example.com", result: &models.UserDB{UserID: userID, FullName: "Alice B"}},
		{name: "blank email", fullName: "Alice", email: " ", wantErr: services.ErrAllFieldsRequired},
		{name: "email taken", fullName: "Alice", email: "bob@example.com", writeErr: repositories.ErrUniqueViolation, wantErr: services.ErrUserAlreadyExists},
		{name: "account gone", fullName: "Alice", email: "a@example.com", wantErr: services.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			writer := services.NewMockAccountWriter(ctrl)
			if !errors.Is(tt.wantErr, services.ErrAllFieldsRequired) {
				writer.EXPECT().UpdateAccountDetails(gomock.Any(), userID, gomock.Any(), gomock.Any()).Return(tt.result, tt.writeErr)
			}

			svc := services.NewAccountService(nil, writer, nil)
			user, err := svc.UpdateAccountDetails(ctx, userID, tt.fullName, tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Alice B", user.FullName)
		})
	}
}

func TestAccountService_UpdateAvatar(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	current := &models.UserDB{UserID: userID, Avatar: "https://cdn/old.png"}

	t.Run("replaces and deletes previous", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		reader := services.NewMockUserReader(ctrl)
		writer := services.NewMockAccountWriter(ctrl)
		blobs := services.NewMockBlobStore(ctrl)

		gomock.InOrder(
			reader.EXPECT().GetByID(gomock.Any(), userID).Return(current, nil),
			blobs.EXPECT().Upload(gomock.Any(), "/tmp/new.png").Return("https://cdn/new.png", nil),
			writer.EXPECT().UpdateAvatar(gomock.Any(), userID, "https://cdn/new.png").
				Return(&models.UserDB{UserID: userID, Avatar: "https://cdn/new.png"}, nil),
			blobs.EXPECT().Delete(gomock.Any(), "https://cdn/old.png").Return(errors.New("s3 down")),
		)

		svc := services.NewAccountService(reader, writer, blobs)
		user, err := svc.UpdateAvatar(ctx, userID, "/tmp/new.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/new.png", user.Avatar)
	})

	t.Run("store failure removes new upload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		reader := services.NewMockUserReader(ctrl)
		writer := services.NewMockAccountWriter(ctrl)
		blobs := services.NewMockBlobStore(ctrl)

		reader.EXPECT().GetByID(gomock.Any(), userID).Return(current, nil)
		blobs.EXPECT().Upload(gomock.Any(), "/tmp/new.png").Return("https://cdn/new.png", nil)
		writer.EXPECT().UpdateAvatar(gomock.Any(), userID, "https://cdn/new.png").Return(nil, errors.New("db down"))
		blobs.EXPECT().Delete(gomock.Any(), "https://cdn/new.png").Return(nil)

		svc := services.NewAccountService(reader, writer, blobs)
		_, err := svc.UpdateAvatar(ctx, userID, "/tmp/new.png")
		assert.EqualError(t, err, "db down")
	})

	t.Run("missing file", func(t *testing.T) {
		svc := services.NewAccountService(nil, nil, nil)
		_, err := svc.UpdateAvatar(ctx, userID, "")
		assert.ErrorIs(t, err, services.ErrAvatarRequired)
	})
}

func TestAccountService_UpdateCoverImage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := services.NewMockUserReader(ctrl)
	writer := services.NewMockAccountWriter(ctrl)
	blobs := services.NewMockBlobStore(ctrl)

	// без прежней обложки удалять нечего
	reader.EXPECT().GetByID(gomock.Any(), userID).Return(&models.UserDB{UserID: userID}, nil)
	blobs.EXPECT().Upload(gomock.Any(), "/tmp/cover.jpg").Return("https://cdn/cover.jpg", nil)
	writer.EXPECT().UpdateCoverImage(gomock.Any(), userID, "https://cdn/cover.jpg").
		Return(&models.UserDB{UserID: userID, CoverImage: "https://cdn/cover.jpg"}, nil)

	svc := services.NewAccountService(reader, writer, blobs)
	user, err := svc.UpdateCoverImage(ctx, userID, "/tmp/cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/cover.jpg", user.CoverImage)

	_, err = svc.UpdateCoverImage(ctx, userID, "")
	assert.ErrorIs(t, err, services.ErrCoverImageRequired)
}
