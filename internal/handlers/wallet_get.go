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

// GetWalletTokener defines only the methods needed by this handler.
type GetWalletTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// WalletGetter defines the interface that the service must implement.
type WalletGetter interface {
	Get(ctx context.Context, userID, walletID uuid.UUID) (*models.WalletDB, error)
}

// NewGetWalletHandler returns an HTTP handler for fetching one wallet.
// @Summary Get a wallet
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} handlers.WalletResponse "Wallet returned"
// @Failure 400 {object} handlers.WalletErrorResponse "Invalid wallet ID"
// @Failure 401 {object} handlers.WalletErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.WalletErrorResponse "Wallet not found"
// @Router /wallets/{walletID} [get]
// @Security BearerAuth
func NewGetWalletHandler(
	svc WalletGetter,
	tokenGetter GetWalletTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Unauthorized"})
			return
		}

		claims, err := tokenGetter.GetClaims(ctx, tokenStr)
		if err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Unauthorized"})
			return
		}

		walletID, err := uuid.Parse(chi.URLParam(r, "walletID"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Invalid wallet ID"})
			return
		}

		wallet, err := svc.Get(ctx, claims.UserID, walletID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Wallet not found"})
			default:
				logger.Log.Errorw("failed to get wallet", "walletID", walletID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(toWalletResponse(*wallet))
	}
}
