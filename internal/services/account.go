package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/repositories"
)

//go:generate mockgen -source=account.go -destination=account_mock.go -package=services

// AccountWriter defines profile write operations for users.
type AccountWriter interface {
	UpdateAccountDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (*models.UserDB, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, url string) (*models.UserDB, error)
	UpdateCoverImage(ctx context.Context, userID uuid.UUID, url string) (*models.UserDB, error)
}

// AccountService maintains the authenticated user's own profile.
type AccountService struct {
	reader UserReader
	writer AccountWriter
	blobs  BlobStore
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(reader UserReader, writer AccountWriter, blobs BlobStore) *AccountService {
	return &AccountService{reader: reader, writer: writer, blobs: blobs}
}

// CurrentUser returns the public profile of userID.
func (svc *AccountService) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	return user.Public(), nil
}

// UpdateAccountDetails changes the full name and email of userID.
func (svc *AccountService) UpdateAccountDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return nil, ErrAllFieldsRequired
	}

	user, err := svc.writer.UpdateAccountDetails(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return nil, ErrUserAlreadyExists
		}
		logger.FromContext(ctx).Errorw("failed to update account details", "user_id", userID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}
	return user.Public(), nil
}

// UpdateAvatar uploads a new avatar and deletes the previous one.
func (svc *AccountService) UpdateAvatar(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, ErrAvatarRequired
	}
	return svc.replaceImage(ctx, userID, localPath,
		func(u *models.UserDB) string { return u.Avatar },
		svc.writer.UpdateAvatar,
	)
}

// UpdateCoverImage uploads a new cover image and deletes the previous one.
func (svc *AccountService) UpdateCoverImage(ctx context.Context, userID uuid.UUID, localPath string) (*models.User, error) {
	if localPath == "" {
		return nil, ErrCoverImageRequired
	}
	return svc.replaceImage(ctx, userID, localPath,
		func(u *models.UserDB) string { return u.CoverImage },
		svc.writer.UpdateCoverImage,
	)
}

// replaceImage uploads localPath, points the user at it and removes the old blob.
// The old blob is only removed once the new URL is stored.
func (svc *AccountService) replaceImage(
	ctx context.Context,
	userID uuid.UUID,
	localPath string,
	current func(*models.UserDB) string,
	update func(ctx context.Context, userID uuid.UUID, url string) (*models.UserDB, error),
) (*models.User, error) {
	log := logger.FromContext(ctx)

	existing, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		log.Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, err
	}
	if existing == nil {
		return nil, ErrAccountNotFound
	}

	url, err := svc.blobs.Upload(ctx, localPath)
	if err != nil {
		log.Errorw("failed to upload image", "user_id", userID, "err", err)
		return nil, err
	}

	updated, err := update(ctx, userID, url)
	if err != nil || updated == nil {
		if delErr := svc.blobs.Delete(ctx, url); delErr != nil {
			log.Warnw("failed to delete unreferenced blob", "url", url, "err", delErr)
		}
		if err != nil {
			log.Errorw("failed to store image url", "user_id", userID, "err", err)
			return nil, err
		}
		return nil, ErrAccountNotFound
	}

	if old := current(existing); old != "" && old != url {
		if err := svc.blobs.Delete(ctx, old); err != nil {
			log.Warnw("failed to delete previous image", "url", old, "err", err)
		}
	}

	return updated.Public(), nil
}
