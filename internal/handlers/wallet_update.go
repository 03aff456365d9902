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

// UpdateWalletTokener defines only the methods needed by this handler.
type UpdateWalletTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// WalletUpdater defines the interface that the service must implement.
type WalletUpdater interface {
	Update(ctx context.Context, userID, walletID uuid.UUID, name, walletType string) error
}

// UpdateWalletRequest represents the JSON body for renaming or retyping a wallet
// swagger:model UpdateWalletRequest
type UpdateWalletRequest struct {
	// Display name
	// required: true
	Name string `json:"name"`

	// Wallet type: account or savings
	// required: true
	Type string `json:"type"`
}

// UpdateWalletResponse represents a successful wallet update
// swagger:model UpdateWalletResponse
type UpdateWalletResponse struct {
	// Success message
	// default: Wallet updated successfully
	Message string `json:"message"`
}

// NewUpdateWalletHandler returns an HTTP handler for updating a wallet.
// The currency and balance of a wallet are immutable.
// @Summary Update a wallet
// @Tags wallets
// @Accept json
// @Produce json
// @Param walletID path string true "Wallet ID"
// @Param request body handlers.UpdateWalletRequest true "Update Wallet Request"
// @Success 200 {object} handlers.UpdateWalletResponse "Wallet updated"
// @Failure 400 {object} handlers.WalletErrorResponse "Invalid request"
// @Failure 401 {object} handlers.WalletErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.WalletErrorResponse "Wallet not found"
// @Router /wallets/{walletID} [put]
// @Security BearerAuth
func NewUpdateWalletHandler(
	svc WalletUpdater,
	tokenGetter UpdateWalletTokener,
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

		var req UpdateWalletRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode update wallet request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Invalid request body"})
			return
		}

		if req.Name == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Name is required"})
			return
		}

		err = svc.Update(ctx, claims.UserID, walletID, req.Name, req.Type)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidType):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Invalid wallet type"})
			case errors.Is(err, services.ErrWalletNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Wallet not found"})
			default:
				logger.Log.Errorw("failed to update wallet", "walletID", walletID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(UpdateWalletResponse{Message: "Wallet updated successfully"})
	}
}
