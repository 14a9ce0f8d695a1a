package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundTrip is a buy followed by the sell that closes the position.
type RoundTrip struct {
	EntryDate  time.Time `json:"entry_date" yaml:"entry_date"`
	ExitDate   time.Time `json:"exit_date" yaml:"exit_date"`
	EntryPrice float64   `json:"entry_price" yaml:"entry_price"`
	ExitPrice  float64   `json:"exit_price" yaml:"exit_price"`
	Shares     float64   `json:"shares" yaml:"shares"`
	// PnL is the realized profit and loss of the round-trip.
	// For example, 100 shares bought at $100 and sold at $110 give (110-100)*100 = $1000.
	PnL float64 `json:"pnl" yaml:"pnl"`
	// ReturnPct is the percent change from entry to exit price.
	ReturnPct float64 `json:"return_pct" yaml:"return_pct"`
}

// NewRoundTrip builds a closed round-trip, computing PnL with decimal arithmetic.
func NewRoundTrip(entryDate time.Time, entryPrice float64, exitDate time.Time, exitPrice float64, shares float64) RoundTrip {
	sharesDec := decimal.NewFromFloat(shares)
	entryDec := sharesDec.Mul(decimal.NewFromFloat(entryPrice))
	exitDec := sharesDec.Mul(decimal.NewFromFloat(exitPrice))
	pnl, _ := exitDec.Sub(entryDec).Float64()

	returnPct := 0.0
	if entryPrice != 0 {
		returnPct, _ = decimal.NewFromFloat(exitPrice).
			Sub(decimal.NewFromFloat(entryPrice)).
			Div(decimal.NewFromFloat(entryPrice)).
			Mul(decimal.NewFromInt(100)).
			Float64()
	}

	return RoundTrip{
		EntryDate:  entryDate,
		ExitDate:   exitDate,
		EntryPrice: entryPrice,
		ExitPrice:  exitPrice,
		Shares:     shares,
		PnL:        pnl,
		ReturnPct:  returnPct,
	}
}

// Duration is the holding time of the round-trip.
func (r RoundTrip) Duration() time.Duration {
	return r.ExitDate.Sub(r.EntryDate)
}

// IsWin reports whether the round-trip closed with a positive PnL.
func (r RoundTrip) IsWin() bool {
	return r.PnL > 0
}
