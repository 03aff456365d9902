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
	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// UpdateRecurringTokener defines only the methods needed by this handler.
type UpdateRecurringTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RecurringUpdater defines the interface that the service must implement.
type RecurringUpdater interface {
	Update(ctx context.Context, rec models.RecurringTransactionDB) error
}

// UpdateRecurringResponse represents a successful template update
// swagger:model UpdateRecurringResponse
type UpdateRecurringResponse struct {
	// Success message
	// default: Recurring transaction updated successfully
	Message string `json:"message"`
}

// NewUpdateRecurringHandler returns an HTTP handler for updating a recurring
// template. The schedule never moves backwards: a next_run_date earlier than
// the stored one is rejected as not found.
// @Summary Update a recurring transaction
// @Tags recurring
// @Accept json
// @Produce json
// @Param recurringID path string true "Recurring Transaction ID"
// @Param request body handlers.RecurringRequest true "Update Recurring Request"
// @Success 200 {object} handlers.UpdateRecurringResponse "Template updated"
// @Failure 400 {object} handlers.RecurringErrorResponse "Invalid request"
// @Failure 401 {object} handlers.RecurringErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.RecurringErrorResponse "Recurring transaction not found"
// @Router /recurring/{recurringID} [put]
// @Security BearerAuth
func NewUpdateRecurringHandler(
	svc RecurringUpdater,
	tokenGetter UpdateRecurringTokener,
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

		var req RecurringRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode update recurring request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Invalid request body"})
			return
		}

		err = svc.Update(ctx, models.RecurringTransactionDB{
			RecurringID: recurringID,
			UserID:      claims.UserID,
			WalletID:    req.WalletID,
			CategoryID:  req.CategoryID,
			Amount:      req.Amount,
			Type:        req.Type,
			Description: req.Description,
			Frequency:   req.Frequency,
			NextRunDate: req.NextRunDate,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAmount),
				errors.Is(err, services.ErrInvalidType),
				errors.Is(err, services.ErrInvalidFrequency):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Invalid amount, type or frequency"})
			case errors.Is(err, services.ErrRecurringNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Recurring transaction not found"})
			default:
				logger.Log.Errorw("failed to update recurring transaction", "recurringID", recurringID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(UpdateRecurringResponse{Message: "Recurring transaction updated successfully"})
	}
}
