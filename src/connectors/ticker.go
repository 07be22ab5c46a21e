package connectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
	requestTimeout       = 10 * time.Second
)

// TickerClient fetches public spot prices used to prefill the entry
// form. Binance price-ticker wire format; no authentication.
type TickerClient struct {
	baseURL string
	http    *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

func NewTickerClient(baseURL string) *TickerClient {
	if baseURL == "" {
		baseURL = GetConfig().TickerBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryDelay).
		AddRetryCondition(isRetryableResp)

	return &TickerClient{
		baseURL: baseURL,
		http:    client,
	}
}

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// SpotPrice returns the current spot price for a symbol like BTCUSDT.
func (c *TickerClient) SpotPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return decimal.Zero, fmt.Errorf("symbol is required")
	}

	var out tickerPrice

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&out).
		Get("/api/v3/ticker/price")

	if err != nil {
		return decimal.Zero, fmt.Errorf("ticker request failed: %w", err)
	}

	if resp.IsError() {
		logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"status": resp.StatusCode(),
		}).Warn("ticker endpoint returned an error")

		return decimal.Zero, fmt.Errorf("ticker request failed: status %d", resp.StatusCode())
	}

	price, err := decimal.NewFromString(out.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed ticker price %q: %w", out.Price, err)
	}

	return price, nil
}
