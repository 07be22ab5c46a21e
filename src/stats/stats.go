package stats

import (
	"github.com/shopspring/decimal"

	"tradejournal/src/model"
)

var hundred = decimal.NewFromInt(100)

// AggregateStats summarises a user's whole journal. All decimal values
// are kept at full precision; rounding is left to the presentation
// edge.
type AggregateStats struct {
	TotalTrades  int             `json:"total_trades"`
	Winners      int             `json:"winners"`
	Losers       int             `json:"losers"`
	WinRate      decimal.Decimal `json:"win_rate"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	TotalLoss    decimal.Decimal `json:"total_loss"`
	NetPnL       decimal.Decimal `json:"net_pnl"`
	AvgRMultiple decimal.Decimal `json:"avg_r_multiple"`
}

// Compute folds the trade collection into aggregate stats in a single
// pass. Order-independent; recomputed in full on every call.
//
// The win-rate denominator is the total trade count, not winners plus
// losers: an open trade with neither result recorded still counts
// against the rate.
func Compute(trades []model.Trade) AggregateStats {
	s := AggregateStats{
		WinRate:      decimal.Zero,
		TotalProfit:  decimal.Zero,
		TotalLoss:    decimal.Zero,
		NetPnL:       decimal.Zero,
		AvgRMultiple: decimal.Zero,
	}

	rSum := decimal.Zero
	rCount := 0

	for _, t := range trades {
		s.TotalTrades++

		if t.RealisedWin != nil && t.RealisedWin.IsPositive() {
			s.Winners++
		}
		if t.RealisedLoss != nil && t.RealisedLoss.IsPositive() {
			s.Losers++
		}

		if t.RealisedWin != nil {
			s.TotalProfit = s.TotalProfit.Add(*t.RealisedWin)
		}
		if t.RealisedLoss != nil {
			s.TotalLoss = s.TotalLoss.Add(*t.RealisedLoss)
		}

		if t.RMultiple != nil {
			rSum = rSum.Add(*t.RMultiple)
			rCount++
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = decimal.NewFromInt(int64(s.Winners)).
			Div(decimal.NewFromInt(int64(s.TotalTrades))).
			Mul(hundred)
	}

	s.NetPnL = s.TotalProfit.Sub(s.TotalLoss)

	if rCount > 0 {
		s.AvgRMultiple = rSum.Div(decimal.NewFromInt(int64(rCount)))
	}

	return s
}
