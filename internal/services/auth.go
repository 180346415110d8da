package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-videotube/internal/jwt"
	"github.com/sbilibin2017/gw-videotube/internal/logger"
	"github.com/sbilibin2017/gw-videotube/internal/metrics"
	"github.com/sbilibin2017/gw-videotube/internal/models"
	"github.com/sbilibin2017/gw-videotube/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.UserDB, error)
	GetOwnersByIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.VideoOwner, error)
}

// UserWriter defines the credential-related write operations for users.
type UserWriter interface {
	Create(ctx context.Context, u models.NewUser) (*models.UserDB, error)
	SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, clearRefreshToken bool) error
}

// TokenCodec issues and verifies credentials of one kind.
type TokenCodec interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Verify(ctx context.Context, token string) (*jwt.Claims, error)
}

// BlobStore stores image files and hands out their URLs.
type BlobStore interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Delete(ctx context.Context, url string) error
}

// AuthMetrics records authentication outcomes.
type AuthMetrics interface {
	RecordLogin(outcome string)
	RecordRefresh(outcome string)
	RecordGate(outcome string)
}

type noopAuthMetrics struct{}

func (noopAuthMetrics) RecordLogin(string)   {}
func (noopAuthMetrics) RecordRefresh(string) {}
func (noopAuthMetrics) RecordGate(string)    {}

// RegisterInput holds the registration form. Image paths point at uploaded temp files.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// AuthService handles registration, login and the refresh token lifecycle.
type AuthService struct {
	reader      UserReader
	writer      UserWriter
	access      TokenCodec
	refresh     TokenCodec
	blobs       BlobStore
	kafkaWriter KafkaWriter
	afterCommit AfterCommitFunc
	metrics     AuthMetrics

	revokeOnPasswordChange bool
	bcryptCost             int
}

// AuthOption configures optional AuthService collaborators.
type AuthOption func(*AuthService)

// WithKafkaWriter enables publishing of account events.
func WithKafkaWriter(w KafkaWriter) AuthOption {
	return func(s *AuthService) { s.kafkaWriter = w }
}

// WithAfterCommit defers event publishing until the surrounding transaction commits.
func WithAfterCommit(fn AfterCommitFunc) AuthOption {
	return func(s *AuthService) { s.afterCommit = fn }
}

// WithAuthMetrics enables recording of authentication outcomes.
func WithAuthMetrics(m AuthMetrics) AuthOption {
	return func(s *AuthService) { s.metrics = m }
}

// WithRevokeOnPasswordChange makes ChangePassword clear the stored refresh token.
func WithRevokeOnPasswordChange(revoke bool) AuthOption {
	return func(s *AuthService) { s.revokeOnPasswordChange = revoke }
}

// WithBcryptCost overrides the bcrypt cost used for new password hashes.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	access TokenCodec,
	refresh TokenCodec,
	blobs BlobStore,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		reader:      reader,
		writer:      writer,
		access:      access,
		refresh:     refresh,
		blobs:       blobs,
		metrics:     noopAuthMetrics{},
		afterCommit: runNow,
		bcryptCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Register creates a new account with uploaded avatar and optional cover image.
func (svc *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	log := logger.FromContext(ctx)

	username := normalizeUsername(in.Username)
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if username == "" || email == "" || fullName == "" || strings.TrimSpace(in.Password) == "" {
		return nil, ErrAllFieldsRequired
	}

	existing, err := svc.reader.GetByUsernameOrEmail(ctx, &username, &email)
	if err != nil {
		log.Errorw("failed to check user exists", "err", err)
		return nil, err
	}
	if existing != nil {
		log.Errorw("user already exists", "username", username, "email", email)
		return nil, ErrUserAlreadyExists
	}

	if in.AvatarPath == "" {
		return nil, ErrAvatarRequired
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), svc.bcryptCost)
	if err != nil {
		log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	avatarURL, err := svc.blobs.Upload(ctx, in.AvatarPath)
	if err != nil {
		log.Errorw("failed to upload avatar", "err", err)
		return nil, err
	}

	var coverURL string
	if in.CoverImagePath != "" {
		coverURL, err = svc.blobs.Upload(ctx, in.CoverImagePath)
		if err != nil {
			log.Errorw("failed to upload cover image", "err", err)
			svc.deleteBlobs(ctx, avatarURL)
			return nil, err
		}
	}

	user, err := svc.writer.Create(ctx, models.NewUser{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		svc.deleteBlobs(ctx, avatarURL, coverURL)
		if errors.Is(err, repositories.ErrUniqueViolation) {
			return nil, ErrUserAlreadyExists
		}
		log.Errorw("failed to save user", "err", err)
		return nil, err
	}

	svc.publish(ctx, user.UserID, models.EventUserRegistered)

	return user.Public(), nil
}

// Login authenticates a user by username or email and issues a fresh token pair.
// Any refresh token issued before is replaced.
func (svc *AuthService) Login(ctx context.Context, username, email, password string) (result *models.LoginResult, err error) {
	defer func() { svc.metrics.RecordLogin(metrics.Outcome(err)) }()
	log := logger.FromContext(ctx)

	username = normalizeUsername(username)
	email = strings.TrimSpace(email)
	if username == "" && email == "" {
		return nil, ErrMissingIdentifier
	}

	var usernameArg, emailArg *string
	if username != "" {
		usernameArg = &username
	}
	if email != "" {
		emailArg = &email
	}

	user, err := svc.reader.GetByUsernameOrEmail(ctx, usernameArg, emailArg)
	if err != nil {
		log.Errorw("failed to get user", "err", err)
		return nil, err
	}
	if user == nil {
		log.Infow("user does not exist", "username", username, "email", email)
		return nil, ErrAccountNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Infow("invalid credentials", "user_id", user.UserID)
		return nil, ErrInvalidCredentials
	}

	pair, err := svc.issueTokenPair(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	if err := svc.writer.SetRefreshToken(ctx, user.UserID, &pair.RefreshToken); err != nil {
		log.Errorw("failed to store refresh token", "user_id", user.UserID, "err", err)
		return nil, err
	}

	svc.publish(ctx, user.UserID, models.EventUserLoggedIn)

	return &models.LoginResult{User: user.Public(), TokenPair: *pair}, nil
}

// Refresh rotates the presented refresh token. The presented token must equal the
// stored one; afterwards it is unusable.
func (svc *AuthService) Refresh(ctx context.Context, token string) (pair *models.TokenPair, err error) {
	defer func() { svc.metrics.RecordRefresh(metrics.Outcome(err)) }()
	log := logger.FromContext(ctx)

	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingCredential
	}

	claims, err := svc.refresh.Verify(ctx, token)
	if err != nil {
		log.Infow("refresh token rejected", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if claims.Kind != jwt.KindRefresh {
		return nil, ErrInvalidCredential
	}

	user, err := svc.reader.GetByID(ctx, claims.UserID)
	if err != nil {
		log.Errorw("failed to get user", "user_id", claims.UserID, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(token)) != 1 {
		log.Warnw("stale refresh token presented", "user_id", user.UserID)
		return nil, ErrStaleCredential
	}

	pair, err = svc.issueTokenPair(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	rotated, err := svc.writer.RotateRefreshToken(ctx, user.UserID, token, pair.RefreshToken)
	if err != nil {
		log.Errorw("failed to rotate refresh token", "user_id", user.UserID, "err", err)
		return nil, err
	}
	if !rotated {
		log.Warnw("refresh token rotated concurrently", "user_id", user.UserID)
		return nil, ErrStaleCredential
	}

	svc.publish(ctx, user.UserID, models.EventTokenRefreshed)

	return pair, nil
}

// Logout clears the stored refresh token. Calling it again is harmless.
func (svc *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := svc.writer.SetRefreshToken(ctx, userID, nil); err != nil {
		logger.FromContext(ctx).Errorw("failed to clear refresh token", "user_id", userID, "err", err)
		return err
	}

	svc.publish(ctx, userID, models.EventUserLoggedOut)
	return nil
}

// ChangePassword replaces the password hash after checking the old password.
func (svc *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	log := logger.FromContext(ctx)

	if oldPassword == "" || strings.TrimSpace(newPassword) == "" {
		return ErrAllFieldsRequired
	}

	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		log.Errorw("failed to get user", "user_id", userID, "err", err)
		return err
	}
	if user == nil {
		return ErrAccountNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		log.Infow("invalid old password", "user_id", userID)
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), svc.bcryptCost)
	if err != nil {
		log.Errorw("failed to hash password", "err", err)
		return err
	}

	if err := svc.writer.UpdatePassword(ctx, userID, string(hashedPassword), svc.revokeOnPasswordChange); err != nil {
		log.Errorw("failed to update password", "user_id", userID, "err", err)
		return err
	}

	svc.publish(ctx, userID, models.EventPasswordChanged)
	return nil
}

// Authenticate resolves an access token to the public profile of its subject.
func (svc *AuthService) Authenticate(ctx context.Context, token string) (user *models.User, err error) {
	defer func() { svc.metrics.RecordGate(metrics.Outcome(err)) }()

	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := svc.access.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if claims.Kind != jwt.KindAccess {
		return nil, ErrInvalidCredential
	}

	record, err := svc.reader.GetByID(ctx, claims.UserID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get user", "user_id", claims.UserID, "err", err)
		return nil, err
	}
	if record == nil {
		return nil, ErrAccountNotFound
	}

	return record.Public(), nil
}

// publish sends the event once the caller's transaction is done, so no account row
// lock is held while the broker is awaited.
func (svc *AuthService) publish(ctx context.Context, userID uuid.UUID, eventType string) {
	svc.afterCommit(ctx, func(ctx context.Context) {
		publishAccountEvent(ctx, svc.kafkaWriter, userID, eventType)
	})
}

func (svc *AuthService) issueTokenPair(ctx context.Context, userID uuid.UUID) (*models.TokenPair, error) {
	access, err := svc.access.Issue(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to generate access token", "err", err)
		return nil, err
	}
	refresh, err := svc.refresh.Issue(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to generate refresh token", "err", err)
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// deleteBlobs removes uploads that ended up unreferenced. Failures are only logged.
func (svc *AuthService) deleteBlobs(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := svc.blobs.Delete(ctx, url); err != nil {
			logger.FromContext(ctx).Warnw("failed to delete unreferenced blob", "url", url, "err", err)
		}
	}
}
