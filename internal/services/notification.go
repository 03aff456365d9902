package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// NotificationWriter defines notification write operations.
type NotificationWriter interface {
	Save(ctx context.Context, userID uuid.UUID, message string) (uuid.UUID, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (int64, error)
}

// NotificationReader defines notification read operations.
type NotificationReader interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]models.NotificationDB, error)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// NotificationService stores notifications and publishes them to Kafka.
// Publishing is best effort: a broker failure is logged and never fails the
// operation that triggered the notification.
type NotificationService struct {
	writer      NotificationWriter
	reader      NotificationReader
	kafkaWriter KafkaWriter
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(writer NotificationWriter, reader NotificationReader, kafkaWriter KafkaWriter) *NotificationService {
	return &NotificationService{
		writer:      writer,
		reader:      reader,
		kafkaWriter: kafkaWriter,
	}
}

// Notify stores a notification for the user and publishes it.
func (svc *NotificationService) Notify(ctx context.Context, userID uuid.UUID, message string) (uuid.UUID, error) {
	notificationID, err := svc.writer.Save(ctx, userID, message)
	if err != nil {
		logger.Log.Errorw("failed to save notification", "userID", userID, "error", err)
		return uuid.Nil, err
	}

	svc.publish(ctx, models.NotificationEvent{
		NotificationID: notificationID.String(),
		UserID:         userID.String(),
		Message:        message,
		CreatedAt:      time.Now().Unix(),
	})

	return notificationID, nil
}

// List returns the user's notifications, newest first.
func (svc *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]models.NotificationDB, error) {
	return svc.reader.ListByUserID(ctx, userID)
}

// MarkRead flags a notification as read.
func (svc *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	rows, err := svc.writer.MarkRead(ctx, userID, notificationID)
	if err != nil {
		logger.Log.Errorw("failed to mark notification read", "notificationID", notificationID, "error", err)
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// publish sends a notification event to Kafka, keyed by user.
func (svc *NotificationService) publish(ctx context.Context, event models.NotificationEvent) {
	if svc.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "notification_id", event.NotificationID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal notification for Kafka", "notification_id", event.NotificationID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
	}

	if err := svc.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish notification to Kafka", "notification_id", event.NotificationID, "error", err)
	} else {
		logger.Log.Infow("Notification published to Kafka", "notification_id", event.NotificationID)
	}
}
