package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// ListWalletsTokener defines only the methods needed by this handler.
type ListWalletsTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// WalletLister defines the interface that the service must implement.
type WalletLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.WalletDB, error)
}

// ListWalletsResponse represents the wallet list response
// swagger:model ListWalletsResponse
type ListWalletsResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}

// NewListWalletsHandler returns an HTTP handler listing the user's wallets.
// @Summary List wallets
// @Tags wallets
// @Produce json
// @Success 200 {object} handlers.ListWalletsResponse "Wallets returned"
// @Failure 401 {object} handlers.WalletErrorResponse "Unauthorized"
// @Router /wallets [get]
// @Security BearerAuth
func NewListWalletsHandler(
	svc WalletLister,
	tokenGetter ListWalletsTokener,
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

		wallets, err := svc.List(ctx, claims.UserID)
		if err != nil {
			logger.Log.Errorw("failed to list wallets", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Internal server error"})
			return
		}

		resp := ListWalletsResponse{Wallets: make([]WalletResponse, 0, len(wallets))}
		for _, wallet := range wallets {
			resp.Wallets = append(resp.Wallets, toWalletResponse(wallet))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
