package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// UpdateTransactionTokener defines only the methods needed by this handler.
type UpdateTransactionTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// TransactionUpdater defines the interface that the service must implement.
type TransactionUpdater interface {
	Update(ctx context.Context, userID, transactionID, walletID, categoryID uuid.UUID, amount decimal.Decimal, txType, description string, occurredAt time.Time) (*models.TransactionDB, error)
}

// UpdateTransactionRequest represents the JSON body for rewriting a transaction
// swagger:model UpdateTransactionRequest
type UpdateTransactionRequest struct {
	// Wallet the transaction applies to
	// required: true
	WalletID uuid.UUID `json:"wallet_id"`

	// Category reference
	// required: true
	CategoryID uuid.UUID `json:"category_id"`

	// Positive magnitude
	// required: true
	Amount decimal.Decimal `json:"amount"`

	// income or expense
	// required: true
	Type string `json:"type"`

	// Free-form description
	Description string `json:"description"`

	// When the transaction happened
	// required: true
	OccurredAt time.Time `json:"occurred_at"`
}

// NewUpdateTransactionHandler returns an HTTP handler for rewriting a
// transaction. Balance corrections follow the change, including a full
// reversal-and-reapply when the transaction moves between wallets.
// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param transactionID path string true "Transaction ID"
// @Param request body handlers.UpdateTransactionRequest true "Update Transaction Request"
// @Success 200 {object} handlers.TransactionResponse "Transaction updated"
// @Failure 400 {object} handlers.TransactionErrorResponse "Invalid request"
// @Failure 401 {object} handlers.TransactionErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.TransactionErrorResponse "Transaction, wallet or category not found"
// @Router /transactions/{transactionID} [put]
// @Security BearerAuth
func NewUpdateTransactionHandler(
	svc TransactionUpdater,
	tokenGetter UpdateTransactionTokener,
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

		transactionID, err := uuid.Parse(chi.URLParam(r, "transactionID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid transaction ID"})
			return
		}

		var req UpdateTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode update transaction request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid request body"})
			return
		}

		txn, err := svc.Update(ctx, claims.UserID, transactionID, req.WalletID, req.CategoryID,
			req.Amount, req.Type, req.Description, req.OccurredAt)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidAmount),
				errors.Is(err, services.ErrInvalidType):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid amount or type"})
			case errors.Is(err, services.ErrTransactionNotFound),
				errors.Is(err, services.ErrWalletNotFound),
				errors.Is(err, services.ErrCategoryNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Transaction, wallet or category not found"})
			default:
				logger.Log.Errorw("failed to update transaction", "transactionID", transactionID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(toTransactionResponse(*txn))
	}
}
