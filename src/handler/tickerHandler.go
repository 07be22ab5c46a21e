package handler

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
)

type priceSource interface {
	SpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

type tickerResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// TickerHandler proxies a public spot-price lookup so the entry form
// can prefill the average entry price.
func TickerHandler(source priceSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			http.Error(w, "symbol is required", http.StatusBadRequest)
			return
		}

		price, err := source.SpotPrice(r.Context(), symbol)
		if err != nil {
			logger.WithError(err).WithField("symbol", symbol).Warn("spot price lookup failed")
			http.Error(w, "price lookup failed", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, tickerResponse{Symbol: symbol, Price: price})
	}
}
