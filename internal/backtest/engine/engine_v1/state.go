package engine

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// PositionState is the state of the simulated portfolio.
type PositionState string

const (
	// PositionStateFlat holds cash only
	PositionStateFlat PositionState = "flat"
	// PositionStateLong holds shares bought with all equity
	PositionStateLong PositionState = "long"
)

// BacktestState is the mutable state of one simulation. It is created per run and never shared.
type BacktestState struct {
	equity        float64
	shares        float64
	highWaterMark float64
	entryDate     time.Time
	entryPrice    float64
	trades        []types.RoundTrip
}

// NewBacktestState creates a flat state holding initialCapital.
func NewBacktestState(initialCapital float64) *BacktestState {
	return &BacktestState{
		equity:        initialCapital,
		shares:        0,
		highWaterMark: initialCapital,
		entryDate:     time.Time{},
		entryPrice:    0,
		trades:        []types.RoundTrip{},
	}
}

// Position returns the current state.
func (s *BacktestState) Position() PositionState {
	if s.shares > 0 {
		return PositionStateLong
	}

	return PositionStateFlat
}

// Equity returns the current equity.
func (s *BacktestState) Equity() float64 {
	return s.equity
}

// Trades returns the closed round-trips in order.
func (s *BacktestState) Trades() []types.RoundTrip {
	return s.trades
}

// Apply processes a signal at the given bar date and reports whether it changed the state.
// A buy while long or a sell while flat is ignored.
func (s *BacktestState) Apply(date time.Time, signal types.Signal) bool {
	switch {
	case signal.Type == types.SignalTypeBuy && s.Position() == PositionStateFlat:
		s.shares = s.equity / signal.Price
		s.equity = s.shares * signal.Price
		s.entryDate = date
		s.entryPrice = signal.Price

		return true
	case signal.Type == types.SignalTypeSell && s.Position() == PositionStateLong:
		s.equity = s.shares * signal.Price
		s.trades = append(s.trades, types.NewRoundTrip(s.entryDate, s.entryPrice, date, signal.Price, s.shares))
		s.shares = 0
		s.entryDate = time.Time{}
		s.entryPrice = 0

		return true
	default:
		return false
	}
}

// MarkToMarket revalues an open position at price. Flat equity is unchanged.
func (s *BacktestState) MarkToMarket(price float64) {
	if s.Position() == PositionStateLong {
		s.equity = s.shares * price
	}
}

// Record updates the high-water mark and returns the equity point of the bar.
func (s *BacktestState) Record(date time.Time) types.EquityPoint {
	s.highWaterMark = max(s.highWaterMark, s.equity)

	drawdown := 0.0
	if s.highWaterMark > 0 && s.equity < s.highWaterMark {
		drawdown = (s.equity - s.highWaterMark) / s.highWaterMark * 100
	}

	return types.EquityPoint{
		Date:     date,
		Equity:   s.equity,
		Drawdown: drawdown,
	}
}
