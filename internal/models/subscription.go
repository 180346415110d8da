package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a directed subscriber -> channel edge. Both ends are user ids.
type Subscription struct {
	ID           uuid.UUID `json:"id" db:"subscription_id"`
	SubscriberID uuid.UUID `json:"subscriberId" db:"subscriber_id"`
	ChannelID    uuid.UUID `json:"channelId" db:"channel_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ChannelStats holds the two relationship counts of an account.
type ChannelStats struct {
	SubscribersCount          int64 `json:"subscribersCount"`
	ChannelsSubscribedToCount int64 `json:"channelsSubscribedToCount"`
}

// ChannelProfile is the public channel page of an account as seen by a viewer.
// swagger:model ChannelProfile
type ChannelProfile struct {
	FullName                  string `json:"fullName"`
	Username                  string `json:"username"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage"`
	Email                     string `json:"email"`
}
