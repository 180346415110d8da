package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-videotube/internal/models"
)

const userColumns = `user_id, username, email, full_name, avatar, cover_image,
	password_hash, refresh_token, created_at, updated_at`

type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByID returns the user with the given ID, or nil when there is none.
func (r *UserReadRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return r.getOne(ctx, query, userID)
}

// GetByUsername returns the user with the given username, or nil when there is none.
func (r *UserReadRepository) GetByUsername(ctx context.Context, username string) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

// GetByUsernameOrEmail returns the first user matching either the username or the email.
// A nil argument does not take part in the match.
func (r *UserReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE ($1::VARCHAR IS NOT NULL AND username = $1)
		   OR ($2::VARCHAR IS NOT NULL AND email = $2)
		LIMIT 1`
	return r.getOne(ctx, query, username, email)
}

// GetOwnersByIDs returns the trimmed profiles of the given users. Unknown IDs are skipped.
func (r *UserReadRepository) GetOwnersByIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.VideoOwner, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT user_id, full_name, username, avatar
		FROM users
		WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var owners []models.VideoOwner
	err = r.db.SelectContext(ctx, &owners, query, args...)
	logQuery(ctx, query, args, len(owners), err)

	return owners, err
}

func (r *UserReadRepository) getOne(ctx context.Context, query string, args ...any) (*models.UserDB, error) {
	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, args...)
	logQuery(ctx, query, args, user.UserID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type UserWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewUserWriteRepository(db *sqlx.DB, txGetter TxGetter) *UserWriteRepository {
	return &UserWriteRepository{db: db, txGetter: txGetter}
}

// Create inserts a new user and returns the stored record.
// Returns ErrUniqueViolation when the username or email is taken.
func (r *UserWriteRepository) Create(ctx context.Context, u models.NewUser) (*models.UserDB, error) {
	query := `
		INSERT INTO users (username, email, full_name, avatar, cover_image, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + userColumns

	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query,
		u.Username, u.Email, u.FullName, u.Avatar, u.CoverImage, u.PasswordHash)
	logQuery(ctx, query, []any{u.Username, u.Email}, user.UserID, err)

	if err != nil {
		return nil, mapWriteError(err)
	}
	return &user, nil
}

// SetRefreshToken overwrites the stored refresh token. A nil token clears it.
func (r *UserWriteRepository) SetRefreshToken(ctx context.Context, userID uuid.UUID, token *string) error {
	query := `
		UPDATE users
		SET refresh_token = $2, updated_at = NOW()
		WHERE user_id = $1`

	_, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, userID, token)
	logQuery(ctx, query, []any{userID, token != nil}, nil, err)

	return err
}

// RotateRefreshToken replaces the stored refresh token only if it still equals oldToken.
// Returns false when another rotation, login or logout got there first.
func (r *UserWriteRepository) RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldToken, newToken string) (bool, error) {
	query := `
		UPDATE users
		SET refresh_token = $3, updated_at = NOW()
		WHERE user_id = $1 AND refresh_token = $2`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, userID, oldToken, newToken)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(ctx, query, []any{userID}, rowsAffected, err)

	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// UpdatePassword stores a new password hash, optionally clearing the refresh token.
func (r *UserWriteRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, clearRefreshToken bool) error {
	query := `
		UPDATE users
		SET password_hash = $2,
		    refresh_token = CASE WHEN $3 THEN NULL ELSE refresh_token END,
		    updated_at = NOW()
		WHERE user_id = $1`

	_, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, userID, passwordHash, clearRefreshToken)
	logQuery(ctx, query, []any{userID, clearRefreshToken}, nil, err)

	return err
}

// UpdateAccountDetails sets full name and email and returns the updated record,
// or nil when the user does not exist.
func (r *UserWriteRepository) UpdateAccountDetails(ctx context.Context, userID uuid.UUID, fullName, email string) (*models.UserDB, error) {
	query := `
		UPDATE users
		SET full_name = $2, email = $3, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + userColumns
	return r.updateOne(ctx, query, userID, fullName, email)
}

// UpdateAvatar sets the avatar URL and returns the updated record.
func (r *UserWriteRepository) UpdateAvatar(ctx context.Context, userID uuid.UUID, url string) (*models.UserDB, error) {
	query := `
		UPDATE users
		SET avatar = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + userColumns
	return r.updateOne(ctx, query, userID, url)
}

// UpdateCoverImage sets the cover image URL and returns the updated record.
func (r *UserWriteRepository) UpdateCoverImage(ctx context.Context, userID uuid.UUID, url string) (*models.UserDB, error) {
	query := `
		UPDATE users
		SET cover_image = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + userColumns
	return r.updateOne(ctx, query, userID, url)
}

func (r *UserWriteRepository) updateOne(ctx context.Context, query string, args ...any) (*models.UserDB, error) {
	var user models.UserDB
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &user, query, args...)
	logQuery(ctx, query, args, user.UserID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapWriteError(err)
	}
	return &user, nil
}
