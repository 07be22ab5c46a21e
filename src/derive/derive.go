package derive

import (
	"github.com/shopspring/decimal"

	"tradejournal/src/model"
)

// ----- direction -----

// Direction returns the trade direction implied by the entry and stop
// prices. When both prices are positive, entry above stop means long,
// otherwise short. For any other combination (stop absent, zero or
// negative price) the current value is returned unchanged, so a
// user-chosen direction survives until the prices make one derivable.
func Direction(avgEntry decimal.Decimal, stopLoss *decimal.Decimal, current string) string {
	if avgEntry.IsPositive() && stopLoss != nil && stopLoss.IsPositive() {
		if avgEntry.GreaterThan(*stopLoss) {
			return model.DirectionLong
		}
		return model.DirectionShort
	}
	return current
}

// ----- r-multiple -----

// RMultiple returns the realised result as a multiple of the risked
// amount: win/risk when a positive win is recorded, -loss/risk when a
// positive loss is. A recorded win takes precedence when both are
// present. Returns nil when risk is absent or non-positive, or when
// neither result is recorded. No rounding is applied here.
func RMultiple(risk, realisedWin, realisedLoss *decimal.Decimal) *decimal.Decimal {
	if risk == nil || !risk.IsPositive() {
		return nil
	}
	if realisedWin != nil && realisedWin.IsPositive() {
		r := realisedWin.Div(*risk)
		return &r
	}
	if realisedLoss != nil && realisedLoss.IsPositive() {
		r := realisedLoss.Div(*risk).Neg()
		return &r
	}
	return nil
}

// Apply recomputes both derived fields on the trade in place. Called
// after every mutation of the inputs and before any persist. Total and
// idempotent: applying it twice with unchanged inputs is a no-op.
func Apply(t *model.Trade) {
	t.Direction = Direction(t.AvgEntry, t.StopLoss, t.Direction)
	t.RMultiple = RMultiple(t.Risk, t.RealisedWin, t.RealisedLoss)
}
