package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// BalanceTokener defines only the methods needed by this handler.
type BalanceTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// BalanceReader defines the interface that the service must implement.
type BalanceReader interface {
	GetConvertedBalance(ctx context.Context, userID, walletID uuid.UUID, targetCurrency string) (decimal.Decimal, error)
}

// BalanceResponse represents a wallet balance, optionally converted
// swagger:model BalanceResponse
type BalanceResponse struct {
	WalletID uuid.UUID       `json:"wallet_id"`
	Currency string          `json:"currency,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

// BalanceErrorResponse represents an error response for the balance endpoint
// swagger:model BalanceErrorResponse
type BalanceErrorResponse struct {
	// Error message
	// default: Exchange rate unavailable
	Error string `json:"error"`
}

// NewGetBalanceHandler returns an HTTP handler for a wallet's balance,
// converted to the currency given in the query when one is provided.
// @Summary Get wallet balance
// @Description Returns the wallet balance. With ?currency=XXX the balance is converted using the stored exchange rates; without it the wallet's own currency is used.
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param currency query string false "Target currency code"
// @Success 200 {object} handlers.BalanceResponse "Balance returned"
// @Failure 400 {object} handlers.BalanceErrorResponse "Invalid wallet ID"
// @Failure 401 {object} handlers.BalanceErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.BalanceErrorResponse "Wallet not found"
// @Failure 422 {object} handlers.BalanceErrorResponse "Exchange rate unavailable"
// @Router /wallets/{walletID}/balance [get]
// @Security BearerAuth
func NewGetBalanceHandler(
	svc BalanceReader,
	tokenGetter BalanceTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Unauthorized"})
			return
		}

		walletID, err := uuid.Parse(chi.URLParam(r, "walletID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Invalid wallet ID"})
			return
		}

		currency := r.URL.Query().Get("currency")

		balance, err := svc.GetConvertedBalance(ctx, claims.UserID, walletID, currency)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Wallet not found"})
			case errors.Is(err, services.ErrConversionUnavailable):
				w.WriteHeader(http.StatusUnprocessableEntity)
				json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Exchange rate unavailable"})
			default:
				logger.Log.Errorw("failed to get balance", "walletID", walletID, "currency", currency, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(BalanceErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(BalanceResponse{
			WalletID: walletID,
			Currency: currency,
			Balance:  balance,
		})
	}
}
