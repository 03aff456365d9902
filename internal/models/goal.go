package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalDB represents a goal row in the database. An expense goal is a spending
// limit against a category; an income goal is a savings target. The four
// *Notified flags record which state transitions have already produced a
// notification, so repeated evaluation never notifies twice.
type GoalDB struct {
	GoalID            uuid.UUID       `json:"goal_id" db:"goal_id"`                         // Unique goal identifier
	UserID            uuid.UUID       `json:"user_id" db:"user_id"`                         // Owning user
	CategoryID        uuid.UUID       `json:"category_id" db:"category_id"`                 // Category the goal tracks
	WalletID          *uuid.UUID      `json:"wallet_id" db:"wallet_id"`                     // Optional wallet scope
	Name              string          `json:"name" db:"name"`                               // Display name
	Type              string          `json:"type" db:"type"`                               // income or expense
	TargetAmount      decimal.Decimal `json:"target_amount" db:"target_amount"`             // Limit or target
	ThresholdPercent  int             `json:"threshold_percent" db:"threshold_percent"`     // Near-limit threshold, percent of target
	StartDate         *time.Time      `json:"start_date" db:"start_date"`                   // Optional window start
	EndDate           *time.Time      `json:"end_date" db:"end_date"`                       // Optional deadline
	Active            bool            `json:"active" db:"active"`                           // Inactive goals are skipped by evaluation
	NearLimitNotified bool            `json:"near_limit_notified" db:"near_limit_notified"` // Near-limit notification already sent
	ExceededNotified  bool            `json:"exceeded_notified" db:"exceeded_notified"`     // Exceeded notification already sent
	DeadlineNotified  bool            `json:"deadline_notified" db:"deadline_notified"`     // Deadline notification already sent
	SuccessNotified   bool            `json:"success_notified" db:"success_notified"`       // Success notification already sent
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`                   // Row creation timestamp
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`                   // Last update timestamp
}
