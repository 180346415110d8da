package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID `json:"id" db:"user_id"`             // Primary key
	Username     string    `json:"username" db:"username"`      // Unique lowercase username
	Email        string    `json:"email" db:"email"`            // Unique email
	FullName     string    `json:"fullName" db:"full_name"`     // Display name
	Avatar       string    `json:"avatar" db:"avatar"`          // Avatar URL, required
	CoverImage   string    `json:"coverImage" db:"cover_image"` // Cover image URL, empty when absent
	PasswordHash string    `json:"-" db:"password_hash"`        // bcrypt hash, never serialized
	RefreshToken *string   `json:"-" db:"refresh_token"`        // Active refresh token, nil when logged out
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`   // Creation timestamp
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`   // Last update timestamp
}

// Public returns the projection of the record that may cross the trust boundary.
func (u *UserDB) Public() *User {
	if u == nil {
		return nil
	}
	return &User{
		UserID:     u.UserID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// User is the public profile of an account: everything except the password hash
// and the refresh token.
// swagger:model User
type User struct {
	UserID     uuid.UUID `json:"id" db:"user_id"`
	Username   string    `json:"username" db:"username"`
	Email      string    `json:"email" db:"email"`
	FullName   string    `json:"fullName" db:"full_name"`
	Avatar     string    `json:"avatar" db:"avatar"`
	CoverImage string    `json:"coverImage" db:"cover_image"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// NewUser holds the fields required to create an account.
type NewUser struct {
	Username     string
	Email        string
	FullName     string
	Avatar       string
	CoverImage   string
	PasswordHash string
}
