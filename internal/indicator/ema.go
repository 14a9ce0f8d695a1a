package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// EMA indicator implements Exponential Moving Average calculation.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator.
func NewEMA(period int) (*EMA, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}

	return &EMA{
		period: period,
	}, nil
}

// Name returns the name of the indicator.
func (e *EMA) Name() types.IndicatorType {
	return types.IndicatorTypeEMA
}

// Compute seeds the average with the SMA of the first period prices, then applies
// EMA = price * alpha + EMA_prev * (1 - alpha) with alpha = 2/(period+1).
// The first value is available at index period-1.
func (e *EMA) Compute(prices []float64) []optional.Option[float64] {
	values := noneSlice(len(prices))
	if len(prices) < e.period {
		return values
	}

	sma := 0.0
	for i := 0; i < e.period; i++ {
		sma += prices[i]
	}

	sma /= float64(e.period)
	values[e.period-1] = optional.Some(sma)

	alpha := 2.0 / float64(e.period+1)
	ema := sma

	for i := e.period; i < len(prices); i++ {
		ema = (prices[i] * alpha) + (ema * (1 - alpha))
		values[i] = optional.Some(ema)
	}

	return values
}
