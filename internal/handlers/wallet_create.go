package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// CreateWalletTokener defines only the methods needed by this handler.
type CreateWalletTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// WalletCreator defines the interface that the service must implement.
type WalletCreator interface {
	Create(ctx context.Context, userID uuid.UUID, name, currency, walletType string) (*models.WalletDB, error)
}

// CreateWalletRequest represents the JSON body for creating a wallet
// swagger:model CreateWalletRequest
type CreateWalletRequest struct {
	// Display name
	// required: true
	// default: Everyday spending
	Name string `json:"name"`

	// Currency code
	// required: true
	// default: USD
	Currency string `json:"currency"`

	// Wallet type: account or savings
	// default: account
	Type string `json:"type"`
}

// WalletResponse represents a wallet returned by the API
// swagger:model WalletResponse
type WalletResponse struct {
	WalletID  uuid.UUID       `json:"wallet_id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// WalletErrorResponse represents an error response for wallet endpoints
// swagger:model WalletErrorResponse
type WalletErrorResponse struct {
	// Error message
	// default: Wallet not found
	Error string `json:"error"`
}

func toWalletResponse(w models.WalletDB) WalletResponse {
	return WalletResponse{
		WalletID:  w.WalletID,
		Name:      w.Name,
		Currency:  w.Currency,
		Type:      w.Type,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
	}
}

// NewCreateWalletHandler returns an HTTP handler for creating a wallet.
// @Summary Create a wallet
// @Description Creates a wallet with a zero balance for the authenticated user.
// @Tags wallets
// @Accept json
// @Produce json
// @Param request body handlers.CreateWalletRequest true "Create Wallet Request"
// @Success 201 {object} handlers.WalletResponse "Wallet created"
// @Failure 400 {object} handlers.WalletErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.WalletErrorResponse "Unauthorized"
// @Router /wallets [post]
// @Security BearerAuth
func NewCreateWalletHandler(
	svc WalletCreator,
	tokenGetter CreateWalletTokener,
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

		var req CreateWalletRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode create wallet request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Invalid request body"})
			return
		}

		if req.Name == "" || req.Currency == "" {
			logger.Log.Warnw("invalid wallet fields", "name", req.Name, "currency", req.Currency)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Name and currency are required"})
			return
		}

		wallet, err := svc.Create(ctx, claims.UserID, req.Name, req.Currency, req.Type)
		if err != nil {
			logger.Log.Errorw("failed to create wallet", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(WalletErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toWalletResponse(*wallet))
	}
}
