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

// DeleteWalletTokener defines only the methods needed by this handler.
type DeleteWalletTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// WalletDeleter defines the interface that the service must implement.
type WalletDeleter interface {
	Delete(ctx context.Context, userID, walletID uuid.UUID) error
}

// DeleteWalletResponse represents a successful wallet deletion
// swagger:model DeleteWalletResponse
type DeleteWalletResponse struct {
	// Success message
	// default: Wallet deleted successfully
	Message string `json:"message"`
}

// NewDeleteWalletHandler returns an HTTP handler for deleting a wallet.
// Deleting a wallet also deletes every transaction recorded against it.
// @Summary Delete a wallet
// @Tags wallets
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Success 200 {object} handlers.DeleteWalletResponse "Wallet deleted"
// @Failure 400 {object} handlers.WalletErrorResponse "Invalid wallet ID"
// @Failure 401 {object} handlers.WalletErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.WalletErrorResponse "Wallet not found"
// @Router /wallets/{walletID} [delete]
// @Security BearerAuth
func NewDeleteWalletHandler(
	svc WalletDeleter,
	tokenGetter DeleteWalletTokener,
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

		err = svc.Delete(ctx, claims.UserID, walletID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Wallet not found"})
			default:
				logger.Log.Errorw("failed to delete wallet", "walletID", walletID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(DeleteWalletResponse{Message: "Wallet deleted successfully"})
	}
}
