package models

import (
	"time"

	"github.com/google/uuid"
)

// InternalTransferCategory is the name of the system categories used to tag
// the two legs of a wallet-to-wallet transfer. The system owns one income and
// one expense category under this name (user_id IS NULL).
const InternalTransferCategory = "Internal Transfer"

// CategoryDB represents a category row in the database.
// UserID is nil for global (system) categories.
type CategoryDB struct {
	CategoryID uuid.UUID  `json:"category_id" db:"category_id"` // Unique category identifier
	UserID     *uuid.UUID `json:"user_id" db:"user_id"`         // Owner; nil for system categories
	Name       string     `json:"name" db:"name"`               // Category name
	Type       string     `json:"type" db:"type"`               // income or expense
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`   // Row creation timestamp
}
