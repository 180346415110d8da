package models

// Account event types published to Kafka.
const (
	EventUserRegistered  = "user_registered"
	EventUserLoggedIn    = "user_logged_in"
	EventTokenRefreshed  = "token_refreshed"
	EventUserLoggedOut   = "user_logged_out"
	EventPasswordChanged = "password_changed"
)

// AccountEvent describes a change in an account's credential lifecycle.
type AccountEvent struct {
	EventID   string `json:"event_id"`  // Unique event identifier
	UserID    string `json:"user_id"`   // Account the event belongs to
	Type      string `json:"type"`      // One of the Event* constants
	Timestamp int64  `json:"timestamp"` // Unix seconds
}
