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

// DeleteRecurringTokener defines only the methods needed by this handler.
type DeleteRecurringTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RecurringDeleter defines the interface that the service must implement.
type RecurringDeleter interface {
	Delete(ctx context.Context, userID, recurringID uuid.UUID) error
}

// DeleteRecurringResponse represents a successful template deletion
// swagger:model DeleteRecurringResponse
type DeleteRecurringResponse struct {
	// Success message
	// default: Recurring transaction deleted successfully
	Message string `json:"message"`
}

// NewDeleteRecurringHandler returns an HTTP handler for deleting a recurring
// template. Transactions already materialized from it stay untouched.
// @Summary Delete a recurring transaction
// @Tags recurring
// @Produce json
// @Param recurringID path string true "Recurring Transaction ID"
// @Success 200 {object} handlers.DeleteRecurringResponse "Template deleted"
// @Failure 400 {object} handlers.RecurringErrorResponse "Invalid recurring transaction ID"
// @Failure 401 {object} handlers.RecurringErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.RecurringErrorResponse "Recurring transaction not found"
// @Router /recurring/{recurringID} [delete]
// @Security BearerAuth
func NewDeleteRecurringHandler(
	svc RecurringDeleter,
	tokenGetter DeleteRecurringTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Unauthorized"})
			return
		}

		recurringID, err := uuid.Parse(chi.URLParam(r, "recurringID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Invalid recurring transaction ID"})
			return
		}

		err = svc.Delete(ctx, claims.UserID, recurringID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRecurringNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Recurring transaction not found"})
			default:
				logger.Log.Errorw("failed to delete recurring transaction", "recurringID", recurringID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(DeleteRecurringResponse{Message: "Recurring transaction deleted successfully"})
	}
}
