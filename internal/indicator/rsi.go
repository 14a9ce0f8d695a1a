package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator. The conventional period is 14.
func NewRSI(period int) (*RSI, error) {
	if err := validatePeriod("period", period); err != nil {
		return nil, err
	}

	return &RSI{
		period: period,
	}, nil
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Compute uses Wilder's smoothing. The first value is available at index period,
// since period price changes are needed for the first average.
func (r *RSI) Compute(prices []float64) []optional.Option[float64] {
	values := noneSlice(len(prices))
	if len(prices) < r.period+1 {
		return values
	}

	avgGain := 0.0
	avgLoss := 0.0

	// First average
	for i := 1; i <= r.period; i++ {
		gain, loss := change(prices[i-1], prices[i])
		avgGain += gain
		avgLoss += loss
	}

	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)
	values[r.period] = optional.Some(rsiFromAverages(avgGain, avgLoss))

	// Subsequent averages using Wilder's smoothing method
	for i := r.period + 1; i < len(prices); i++ {
		gain, loss := change(prices[i-1], prices[i])
		avgGain = (avgGain*float64(r.period-1) + gain) / float64(r.period)
		avgLoss = (avgLoss*float64(r.period-1) + loss) / float64(r.period)
		values[i] = optional.Some(rsiFromAverages(avgGain, avgLoss))
	}

	return values
}

func change(prev, current float64) (gain float64, loss float64) {
	diff := current - prev
	if diff > 0 {
		return diff, 0
	}

	return 0, -diff
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50 // flat prices
		}

		return 100 // Perfect uptrend
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
