package models

import (
	"time"

	"github.com/google/uuid"
)

// Video represents a video record in the database
type Video struct {
	VideoID     uuid.UUID `json:"id" db:"video_id"`
	OwnerID     uuid.UUID `json:"ownerId" db:"owner_id"`
	VideoFile   string    `json:"videoFile" db:"video_file"`
	Thumbnail   string    `json:"thumbnail" db:"thumbnail"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Duration    float64   `json:"duration" db:"duration"` // Seconds
	Views       int64     `json:"views" db:"views"`
	IsPublished bool      `json:"isPublished" db:"is_published"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// VideoOwner is the trimmed owner profile embedded into watch history items.
// swagger:model VideoOwner
type VideoOwner struct {
	UserID   uuid.UUID `json:"-" db:"user_id"`
	FullName string    `json:"fullName" db:"full_name"`
	Username string    `json:"username" db:"username"`
	Avatar   string    `json:"avatar" db:"avatar"`
}

// WatchHistoryItem is a video joined with its owner's trimmed profile.
// Owner is nil when the owner account no longer exists.
// swagger:model WatchHistoryItem
type WatchHistoryItem struct {
	Video
	Owner *VideoOwner `json:"owner"`
}
