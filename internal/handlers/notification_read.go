package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// ReadNotificationTokener defines only the methods needed by this handler.
type ReadNotificationTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// NotificationMarker defines the interface that the service must implement.
type NotificationMarker interface {
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// ReadNotificationResponse represents a successful mark-read
// swagger:model ReadNotificationResponse
type ReadNotificationResponse struct {
	// Success message
	// default: Notification marked as read
	Message string `json:"message"`
}

// NewReadNotificationHandler returns an HTTP handler that marks one of the
// user's notifications as read.
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} handlers.ReadNotificationResponse "Notification marked as read"
// @Failure 400 {object} handlers.NotificationErrorResponse "Invalid notification ID"
// @Failure 401 {object} handlers.NotificationErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.NotificationErrorResponse "Notification not found"
// @Router /notifications/{notificationID}/read [post]
// @Security BearerAuth
func NewReadNotificationHandler(
	svc NotificationMarker,
	tokenGetter ReadNotificationTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(NotificationErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(NotificationErrorResponse{Error: "Unauthorized"})
			return
		}

		notificationID, err := uuid.Parse(chi.URLParam(r, "notificationID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(NotificationErrorResponse{Error: "Invalid notification ID"})
			return
		}

		err = svc.MarkRead(ctx, claims.UserID, notificationID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNotificationNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(NotificationErrorResponse{Error: "Notification not found"})
			default:
				logger.Log.Errorw("failed to mark notification as read", "notificationID", notificationID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(NotificationErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ReadNotificationResponse{Message: "Notification marked as read"})
	}
}
