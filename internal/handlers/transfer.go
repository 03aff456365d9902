package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// TransferTokener defines only the methods needed by this handler.
type TransferTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// Transferer defines the interface that the service must implement.
type Transferer interface {
	Transfer(ctx context.Context, userID, fromWalletID, toWalletID uuid.UUID, amount decimal.Decimal) (*services.TransferResult, error)
}

// TransferRequest represents the JSON body for a wallet-to-wallet transfer
// swagger:model TransferRequest
type TransferRequest struct {
	// Source wallet
	// required: true
	FromWalletID uuid.UUID `json:"from_wallet_id"`

	// Destination wallet
	// required: true
	ToWalletID uuid.UUID `json:"to_wallet_id"`

	// Amount in the source wallet's currency
	// required: true
	// default: 100.0
	Amount decimal.Decimal `json:"amount"`
}

// TransferResponse represents a successful transfer
// swagger:model TransferResponse
type TransferResponse struct {
	// Success message
	// default: Transfer completed successfully
	Message string `json:"message"`

	// Amount credited to the destination, in its currency
	CreditedAmount decimal.Decimal `json:"credited_amount"`

	// Source wallet balance after the transfer
	FromBalance decimal.Decimal `json:"from_balance"`

	// Destination wallet balance after the transfer
	ToBalance decimal.Decimal `json:"to_balance"`
}

// TransferErrorResponse represents an error response for transfers
// swagger:model TransferErrorResponse
type TransferErrorResponse struct {
	// Error message
	// default: Invalid amount or wallets
	Error string `json:"error"`
}

// NewTransferHandler returns an HTTP handler for moving money between two of
// the user's wallets. Cross-currency transfers convert at the stored rate.
// @Summary Transfer between wallets
// @Description Debits the source wallet and credits the destination. Both legs are recorded as linked transactions; a cross-currency transfer converts the amount before crediting.
// @Tags transfers
// @Accept json
// @Produce json
// @Param request body handlers.TransferRequest true "Transfer Request"
// @Success 200 {object} handlers.TransferResponse "Transfer completed"
// @Failure 400 {object} handlers.TransferErrorResponse "Invalid amount or wallets"
// @Failure 401 {object} handlers.TransferErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.TransferErrorResponse "Wallet not found"
// @Failure 422 {object} handlers.TransferErrorResponse "Exchange rate unavailable"
// @Router /transfer [post]
// @Security BearerAuth
func NewTransferHandler(
	svc Transferer,
	tokenGetter TransferTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TransferErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(TransferErrorResponse{Error: "Unauthorized"})
			return
		}

		var req TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode transfer request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TransferErrorResponse{Error: "Invalid request body"})
			return
		}

		result, err := svc.Transfer(ctx, claims.UserID, req.FromWalletID, req.ToWalletID, req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrSameWallet),
				errors.Is(err, services.ErrInvalidAmount):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransferErrorResponse{Error: "Invalid amount or wallets"})
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(TransferErrorResponse{Error: "Wallet not found"})
			case errors.Is(err, services.ErrConversionUnavailable):
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(TransferErrorResponse{Error: "Exchange rate unavailable"})
			default:
				logger.Log.Errorw("failed to transfer",
					"userID", claims.UserID, "from", req.FromWalletID, "to", req.ToWalletID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(TransferErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TransferResponse{
			Message:        "Transfer completed successfully",
			CreditedAmount: result.Deposit.Amount,
			FromBalance:    result.FromBalance,
			ToBalance:      result.ToBalance,
		})
	}
}
