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

// CreateTransactionTokener defines only the methods needed by this handler.
type CreateTransactionTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// TransactionCreator defines the interface that the service must implement.
type TransactionCreator interface {
	Create(ctx context.Context, userID, walletID, categoryID uuid.UUID, amount decimal.Decimal, txType, description string, occurredAt time.Time) (*models.TransactionDB, error)
}

// CreateTransactionRequest represents the JSON body for recording a transaction
// swagger:model CreateTransactionRequest
type CreateTransactionRequest struct {
	// Wallet the transaction applies to
	// required: true
	WalletID uuid.UUID `json:"wallet_id"`

	// Category reference
	// required: true
	CategoryID uuid.UUID `json:"category_id"`

	// Positive magnitude
	// required: true
	// default: 42.50
	Amount decimal.Decimal `json:"amount"`

	// income or expense
	// required: true
	// default: expense
	Type string `json:"type"`

	// Free-form description
	Description string `json:"description"`

	// When the transaction happened; defaults to now
	OccurredAt *time.Time `json:"occurred_at"`
}

// TransactionResponse represents a transaction returned by the API
// swagger:model TransactionResponse
type TransactionResponse struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	WalletID      uuid.UUID       `json:"wallet_id"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Description   string          `json:"description"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// TransactionErrorResponse represents an error response for transaction endpoints
// swagger:model TransactionErrorResponse
type TransactionErrorResponse struct {
	// Error message
	// default: Invalid amount or type
	Error string `json:"error"`
}

func toTransactionResponse(t models.TransactionDB) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		WalletID:      t.WalletID,
		CategoryID:    t.CategoryID,
		Amount:        t.Amount,
		Type:          t.Type,
		Description:   t.Description,
		OccurredAt:    t.OccurredAt,
	}
}

// NewCreateTransactionHandler returns an HTTP handler for recording an income
// or expense transaction. The wallet balance is adjusted in the same database
// transaction.
// @Summary Record a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body handlers.CreateTransactionRequest true "Create Transaction Request"
// @Success 201 {object} handlers.TransactionResponse "Transaction recorded"
// @Failure 400 {object} handlers.TransactionErrorResponse "Invalid amount or type"
// @Failure 401 {object} handlers.TransactionErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.TransactionErrorResponse "Wallet or category not found"
// @Router /transactions [post]
// @Security BearerAuth
func NewCreateTransactionHandler(
	svc TransactionCreator,
	tokenGetter CreateTransactionTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Unauthorized"})
			return
		}

		var req CreateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode create transaction request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid request body"})
			return
		}

		occurredAt := time.Now()
		if req.OccurredAt != nil {
			occurredAt = *req.OccurredAt
		}

		txn, err := svc.Create(ctx, claims.UserID, req.WalletID, req.CategoryID,
			req.Amount, req.Type, req.Description, occurredAt)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAmount),
				errors.Is(err, services.ErrInvalidType):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid amount or type"})
			case errors.Is(err, services.ErrWalletNotFound),
				errors.Is(err, services.ErrCategoryNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Wallet or category not found"})
			default:
				logger.Log.Errorw("failed to create transaction", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toTransactionResponse(*txn))
	}
}
