package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// NotificationWriteRepository handles notification write operations
type NotificationWriteRepository struct {
	db *sqlx.DB
}

func NewNotificationWriteRepository(db *sqlx.DB) *NotificationWriteRepository {
	return &NotificationWriteRepository{db: db}
}

// Save inserts an unread notification and returns its identifier.
func (r *NotificationWriteRepository) Save(ctx context.Context, userID uuid.UUID, message string) (uuid.UUID, error) {
	query := `
		INSERT INTO notifications (notification_id, user_id, message, read, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		RETURNING notification_id
	`
	notificationID := uuid.New()
	args := []any{notificationID, userID, message}

	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", id,
		"error", err,
	)

	return id, err
}

// MarkRead flags a notification as read.
func (r *NotificationWriteRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications SET read = TRUE
		WHERE notification_id = $1 AND user_id = $2
	`
	args := []any{notificationID, userID}

	res, err := r.db.ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", rowsAffected,
		"error", err,
	)

	return rowsAffected, err
}

// NotificationReadRepository handles notification read operations
type NotificationReadRepository struct {
	db *sqlx.DB
}

func NewNotificationReadRepository(db *sqlx.DB) *NotificationReadRepository {
	return &NotificationReadRepository{db: db}
}

// ListByUserID returns the user's notifications, newest first.
func (r *NotificationReadRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.NotificationDB, error) {
	const query = `
		SELECT notification_id, user_id, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var notifications []models.NotificationDB
	err := r.db.SelectContext(ctx, &notifications, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(notifications),
		"error", err,
	)

	return notifications, err
}

// GetSettings returns the user's notification preferences. A user without a
// stored row gets the defaults (everything on).
func (r *NotificationReadRepository) GetSettings(ctx context.Context, userID uuid.UUID) (models.NotificationSettingsDB, error) {
	const query = `
		SELECT user_id, notify_near_limit, notify_exceeded, notify_deadline, notify_success
		FROM notification_settings
		WHERE user_id = $1
	`

	var settings models.NotificationSettingsDB
	err := r.db.GetContext(ctx, &settings, query, userID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return models.NotificationSettingsDB{
			UserID:          userID,
			NotifyNearLimit: true,
			NotifyExceeded:  true,
			NotifyDeadline:  true,
			NotifySuccess:   true,
		}, nil
	}

	return settings, err
}
