package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/jwt"
	"github.com/sbilibin2017/pf-wallet/internal/logger"
	"github.com/sbilibin2017/pf-wallet/internal/models"
	"github.com/sbilibin2017/pf-wallet/internal/services"
)

// RatesTokener defines only the methods needed by this handler.
type RatesTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RatesReader defines the interface that the service must implement.
type RatesReader interface {
	GetRates(ctx context.Context, base string) ([]models.ExchangeRateDB, error)
	GetRate(ctx context.Context, base, target string) (decimal.Decimal, error)
}

// RateItem represents one stored exchange rate
// swagger:model RateItem
type RateItem struct {
	Target      string          `json:"target"`
	Rate        decimal.Decimal `json:"rate"`
	LastUpdated time.Time       `json:"last_updated"`
}

// GetRatesResponse represents the exchange rate listing
// swagger:model GetRatesResponse
type GetRatesResponse struct {
	Base  string     `json:"base"`
	Rates []RateItem `json:"rates"`
}

// RatesErrorResponse represents an error response for rate endpoints
// swagger:model RatesErrorResponse
type RatesErrorResponse struct {
	// Error message
	// default: Exchange rate unavailable
	Error string `json:"error"`
}

// NewGetRatesHandler returns an HTTP handler for the stored exchange rates.
// With ?target=XXX it resolves a single pair, including the inverse-rate
// fallback; without it the full table for the base is returned.
// @Summary Get exchange rates
// @Tags rates
// @Produce json
// @Param base query string false "Base currency code, default USD"
// @Param target query string false "Resolve a single pair instead of the full table"
// @Success 200 {object} handlers.GetRatesResponse "Rates returned"
// @Failure 401 {object} handlers.RatesErrorResponse "Unauthorized"
// @Failure 422 {object} handlers.RatesErrorResponse "Exchange rate unavailable"
// @Router /rates [get]
// @Security BearerAuth
func NewGetRatesHandler(
	svc RatesReader,
	tokenGetter RatesTokener,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenStr, err := tokenGetter.GetTokenFromRequest(ctx, r)
		if err != nil {
			logger.Log.Errorw("failed to get token from request", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RatesErrorResponse{Error: "Unauthorized"})
			return
		}

		if _, err := tokenGetter.GetClaims(ctx, tokenStr); err != nil {
			logger.Log.Errorw("failed to get claims from token", "error", err)
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(RatesErrorResponse{Error: "Unauthorized"})
			return
		}

		base := r.URL.Query().Get("base")
		if base == "" {
			base = "USD"
		}

		if target := r.URL.Query().Get("target"); target != "" {
			rate, err := svc.GetRate(ctx, base, target)
			if err != nil {
				switch {
				case errors.Is(err, services.ErrConversionUnavailable):
					w.WriteHeader(http.StatusUnprocessableEntity)
					json.NewEncoder(w).Encode(RatesErrorResponse{Error: "Exchange rate unavailable"})
				default:
					logger.Log.Errorw("failed to get rate", "base", base, "target", target, "error", err)
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(RatesErrorResponse{Error: "Internal server error"})
				}
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(GetRatesResponse{
				Base:  base,
				Rates: []RateItem{{Target: target, Rate: rate, LastUpdated: time.Now()}},
			})
			return
		}

		rates, err := svc.GetRates(ctx, base)
		if err != nil {
			logger.Log.Errorw("failed to list rates", "base", base, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(RatesErrorResponse{Error: "Internal server error"})
			return
		}

		resp := GetRatesResponse{Base: base, Rates: make([]RateItem, 0, len(rates))}
		for _, rate := range rates {
			resp.Rates = append(resp.Rates, RateItem{
				Target:      rate.Target,
				Rate:        rate.Rate,
				LastUpdated: rate.LastUpdated,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
