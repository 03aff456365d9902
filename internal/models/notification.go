package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationDB represents a notification row in the database
type NotificationDB struct {
	NotificationID uuid.UUID `json:"notification_id" db:"notification_id"` // Unique notification identifier
	UserID         uuid.UUID `json:"user_id" db:"user_id"`                 // Recipient user
	Message        string    `json:"message" db:"message"`                 // Human-readable message
	Read           bool      `json:"read" db:"read"`                       // Whether the user has seen it
	CreatedAt      time.Time `json:"created_at" db:"created_at"`           // Creation timestamp
}

// NotificationSettingsDB holds a user's per-trigger notification preferences.
// All flags default to true for a new user.
type NotificationSettingsDB struct {
	UserID          uuid.UUID `json:"user_id" db:"user_id"`                     // Owning user
	NotifyNearLimit bool      `json:"notify_near_limit" db:"notify_near_limit"` // Near-limit goal warnings
	NotifyExceeded  bool      `json:"notify_exceeded" db:"notify_exceeded"`     // Limit-exceeded warnings
	NotifyDeadline  bool      `json:"notify_deadline" db:"notify_deadline"`     // Approaching-deadline reminders
	NotifySuccess   bool      `json:"notify_success" db:"notify_success"`       // Goal-reached congratulations
}

// NotificationEvent is the message published to Kafka for every
// notification written, keyed by user ID.
type NotificationEvent struct {
	NotificationID string `json:"notification_id"` // Identifier of the stored notification
	UserID         string `json:"user_id"`         // Recipient user
	Message        string `json:"message"`         // Notification text
	CreatedAt      int64  `json:"created_at"`      // Unix timestamp (seconds)
}
