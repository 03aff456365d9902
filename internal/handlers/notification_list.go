package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// ListNotificationsTokener defines only the methods needed by this handler.
type ListNotificationsTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// NotificationLister defines the interface that the service must implement.
type NotificationLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.NotificationDB, error)
}

// NotificationItem represents one notification
// swagger:model NotificationItem
type NotificationItem struct {
	NotificationID uuid.UUID `json:"notification_id"`
	Message        string    `json:"message"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListNotificationsResponse represents the notification list response
// swagger:model ListNotificationsResponse
type ListNotificationsResponse struct {
	Notifications []NotificationItem `json:"notifications"`
}

// NotificationErrorResponse represents an error response for notification endpoints
// swagger:model NotificationErrorResponse
type NotificationErrorResponse struct {
	// Error message
	// default: Notification not found
	Error string `json:"error"`
}

// NewListNotificationsHandler returns an HTTP handler listing the user's
// notifications, newest first.
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {object} handlers.ListNotificationsResponse "Notifications returned"
// @Failure 401 {object} handlers.NotificationErrorResponse "Unauthorized"
// @Router /notifications [get]
// @Security BearerAuth
func NewListNotificationsHandler(
	svc NotificationLister,
	tokenGetter ListNotificationsTokener,
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

		notifications, err := svc.List(ctx, claims.UserID)
		if err != nil {
			logger.Log.Errorw("failed to list notifications", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(NotificationErrorResponse{Error: "Internal server error"})
			return
		}

		resp := ListNotificationsResponse{Notifications: make([]NotificationItem, 0, len(notifications))}
		for _, n := range notifications {
			resp.Notifications = append(resp.Notifications, NotificationItem{
				NotificationID: n.NotificationID,
				Message:        n.Message,
				Read:           n.Read,
				CreatedAt:      n.CreatedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
