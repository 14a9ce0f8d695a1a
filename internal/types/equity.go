package types

import "time"

// EquityPoint is the portfolio mark-to-market value at the close of one bar.
type EquityPoint struct {
	Date time.Time `json:"date" yaml:"date"`
	// Equity is never negative.
	Equity float64 `json:"equity" yaml:"equity"`
	// Drawdown is the percent below the running high-water mark. Always <= 0.
	Drawdown float64 `json:"drawdown" yaml:"drawdown"`
}
