package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
)

// ListTransactionsTokener defines only the methods needed by this handler.
type ListTransactionsTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// TransactionLister defines the interface that the service must implement.
type TransactionLister interface {
	List(ctx context.Context, userID uuid.UUID, walletID *uuid.UUID, from, to *time.Time) ([]models.TransactionDB, error)
}

// ListTransactionsResponse represents the transaction list response
// swagger:model ListTransactionsResponse
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// NewListTransactionsHandler returns an HTTP handler listing the user's
// transactions, newest first, with optional wallet and date-window filters.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param wallet_id query string false "Filter by wallet"
// @Param from query string false "Window start (RFC 3339)"
// @Param to query string false "Window end (RFC 3339)"
// @Success 200 {object} handlers.ListTransactionsResponse "Transactions returned"
// @Failure 400 {object} handlers.TransactionErrorResponse "Invalid filter"
// @Failure 401 {object} handlers.TransactionErrorResponse "Unauthorized"
// @Router /transactions [get]
// @Security BearerAuth
func NewListTransactionsHandler(
	svc TransactionLister,
	tokenGetter ListTransactionsTokener,
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

		q := r.URL.Query()

		var walletID *uuid.UUID
		if raw := q.Get("wallet_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid wallet_id filter"})
				return
			}
			walletID = &id
		}

		var from, to *time.Time
		if raw := q.Get("from"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid from filter"})
				return
			}
			from = &t
		}
		if raw := q.Get("to"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Invalid to filter"})
				return
			}
			to = &t
		}

		txns, err := svc.List(ctx, claims.UserID, walletID, from, to)
		if err != nil {
			logger.Log.Errorw("failed to list transactions", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(TransactionErrorResponse{Error: "Internal server error"})
			return
		}

		resp := ListTransactionsResponse{Transactions: make([]TransactionResponse, 0, len(txns))}
		for _, txn := range txns {
			resp.Transactions = append(resp.Transactions, toTransactionResponse(txn))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
