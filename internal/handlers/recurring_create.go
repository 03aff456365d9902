package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// CreateRecurringTokener defines only the methods needed by this handler.
type CreateRecurringTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RecurringCreator defines the interface that the service must implement.
type RecurringCreator interface {
	Create(ctx context.Context, rec models.RecurringTransactionDB) (*models.RecurringTransactionDB, error)
}

// RecurringRequest represents the JSON body for a recurring transaction template
// swagger:model RecurringRequest
type RecurringRequest struct {
	// Wallet materialized transactions go to
	// required: true
	WalletID uuid.UUID `json:"wallet_id"`

	// Category of materialized transactions
	// required: true
	CategoryID uuid.UUID `json:"category_id"`

	// Positive magnitude
	// required: true
	// default: 9.99
	Amount decimal.Decimal `json:"amount"`

	// income or expense
	// required: true
	// default: expense
	Type string `json:"type"`

	// Copied onto materialized transactions
	Description string `json:"description"`

	// daily, weekly or monthly
	// required: true
	// default: monthly
	Frequency string `json:"frequency"`

	// First date the template is due
	// required: true
	NextRunDate time.Time `json:"next_run_date"`
}

// RecurringResponse represents a recurring template returned by the API
// swagger:model RecurringResponse
type RecurringResponse struct {
	RecurringID uuid.UUID       `json:"recurring_id"`
	WalletID    uuid.UUID       `json:"wallet_id"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Frequency   string          `json:"frequency"`
	NextRunDate time.Time       `json:"next_run_date"`
}

// RecurringErrorResponse represents an error response for recurring endpoints
// swagger:model RecurringErrorResponse
type RecurringErrorResponse struct {
	// Error message
	// default: Invalid amount, type or frequency
	Error string `json:"error"`
}

func toRecurringResponse(rec models.RecurringTransactionDB) RecurringResponse {
	return RecurringResponse{
		RecurringID: rec.RecurringID,
		WalletID:    rec.WalletID,
		CategoryID:  rec.CategoryID,
		Amount:      rec.Amount,
		Type:        rec.Type,
		Description: rec.Description,
		Frequency:   rec.Frequency,
		NextRunDate: rec.NextRunDate,
	}
}

// NewCreateRecurringHandler returns an HTTP handler for creating a recurring
// transaction template.
// @Summary Create a recurring transaction
// @Tags recurring
// @Accept json
// @Produce json
// @Param request body handlers.RecurringRequest true "Create Recurring Request"
// @Success 201 {object} handlers.RecurringResponse "Template created"
// @Failure 400 {object} handlers.RecurringErrorResponse "Invalid amount, type or frequency"
// @Failure 401 {object} handlers.RecurringErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.RecurringErrorResponse "Wallet or category not found"
// @Router /recurring [post]
// @Security BearerAuth
func NewCreateRecurringHandler(
	svc RecurringCreator,
	tokenGetter CreateRecurringTokener,
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

		var req RecurringRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode create recurring request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Invalid request body"})
			return
		}

		rec, err := svc.Create(ctx, models.RecurringTransactionDB{
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
			case errors.Is(err, services.ErrWalletNotFound),
				errors.Is(err, services.ErrCategoryNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Wallet or category not found"})
			default:
				logger.Log.Errorw("failed to create recurring transaction", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RecurringErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toRecurringResponse(*rec))
	}
}
