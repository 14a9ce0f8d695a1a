package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// MACD represents the Moving Average Convergence Divergence line (fast EMA minus slow EMA).
type MACD struct {
	fast *EMA
	slow *EMA
}

// NewMACD creates a new MACD indicator. The conventional periods are 12 and 26.
func NewMACD(fastPeriod int, slowPeriod int) (*MACD, error) {
	if err := validatePeriod("fastPeriod", fastPeriod); err != nil {
		return nil, err
	}

	if err := validatePeriod("slowPeriod", slowPeriod); err != nil {
		return nil, err
	}

	if fastPeriod >= slowPeriod {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be smaller than slowPeriod (%d)", fastPeriod, slowPeriod)
	}

	return &MACD{
		fast: &EMA{period: fastPeriod},
		slow: &EMA{period: slowPeriod},
	}, nil
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Compute returns the MACD line wherever both EMAs are available.
func (m *MACD) Compute(prices []float64) []optional.Option[float64] {
	fastValues := m.fast.Compute(prices)
	slowValues := m.slow.Compute(prices)
	values := noneSlice(len(prices))

	for i := range prices {
		if fastValues[i].IsNone() || slowValues[i].IsNone() {
			continue
		}

		values[i] = optional.Some(fastValues[i].Unwrap() - slowValues[i].Unwrap())
	}

	return values
}
