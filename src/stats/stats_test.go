package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradejournal/src/derive"
	"tradejournal/src/model"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func journalTrade(risk, win, loss *decimal.Decimal) model.Trade {
	t := model.Trade{
		UserID:       "u1",
		TradeDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Coin:         "BTC",
		Direction:    model.DirectionLong,
		AvgEntry:     decimal.RequireFromString("100"),
		Risk:         risk,
		RealisedWin:  win,
		RealisedLoss: loss,
	}
	derive.Apply(&t)
	return t
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)

	if s.TotalTrades != 0 {
		t.Fatalf("expected 0 total trades. got=%d", s.TotalTrades)
	}
	if !s.WinRate.Equal(decimal.Zero) {
		t.Fatalf("expected zero win rate. got=%s", s.WinRate.String())
	}
	if !s.NetPnL.Equal(decimal.Zero) {
		t.Fatalf("expected zero net pnl. got=%s", s.NetPnL.String())
	}
	if !s.AvgRMultiple.Equal(decimal.Zero) {
		t.Fatalf("expected zero avg r-multiple. got=%s", s.AvgRMultiple.String())
	}
}

func TestComputeScenario(t *testing.T) {
	trades := []model.Trade{
		journalTrade(decPtr("50"), decPtr("100"), nil),
		journalTrade(decPtr("20"), nil, decPtr("40")),
		journalTrade(decPtr("10"), nil, nil),
	}

	s := Compute(trades)

	if s.TotalTrades != 3 {
		t.Fatalf("expected 3 total trades. got=%d", s.TotalTrades)
	}
	if s.Winners != 1 {
		t.Fatalf("expected 1 winner. got=%d", s.Winners)
	}
	if s.Losers != 1 {
		t.Fatalf("expected 1 loser. got=%d", s.Losers)
	}
	if !s.WinRate.Round(2).Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("win rate mismatch. got=%s", s.WinRate.String())
	}
	if !s.TotalProfit.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("total profit mismatch. got=%s", s.TotalProfit.String())
	}
	if !s.TotalLoss.Equal(decimal.RequireFromString("40")) {
		t.Fatalf("total loss mismatch. got=%s", s.TotalLoss.String())
	}
	if !s.NetPnL.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("net pnl mismatch. got=%s", s.NetPnL.String())
	}
	// Third trade has no r-multiple and is excluded from the mean:
	// mean(2, -2) = 0.
	if !s.AvgRMultiple.Equal(decimal.Zero) {
		t.Fatalf("avg r-multiple mismatch. got=%s", s.AvgRMultiple.String())
	}
}

func TestComputeWinRateDenominatorIsTotalTrades(t *testing.T) {
	// An open trade with neither result still counts against the win
	// rate: 1 winner of 2 trades is 50, not 100.
	trades := []model.Trade{
		journalTrade(decPtr("10"), decPtr("20"), nil),
		journalTrade(nil, nil, nil),
	}

	s := Compute(trades)

	if !s.WinRate.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("win rate mismatch. got=%s", s.WinRate.String())
	}
}

func TestComputeOrderIndependent(t *testing.T) {
	a := journalTrade(decPtr("50"), decPtr("100"), nil)
	b := journalTrade(decPtr("20"), nil, decPtr("40"))

	forward := Compute([]model.Trade{a, b})
	backward := Compute([]model.Trade{b, a})

	if !forward.NetPnL.Equal(backward.NetPnL) || forward.Winners != backward.Winners {
		t.Fatalf("fold depends on ordering. forward=%+v backward=%+v", forward, backward)
	}
}
