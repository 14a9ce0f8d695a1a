package engine

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// SimulationOptions tunes metric computation.
type SimulationOptions struct {
	// ProfitFactorCap is reported when there are gains but no losses. Zero means ProfitFactorCap.
	ProfitFactorCap float64
}

// DefaultSimulationOptions returns the options used when none are configured.
func DefaultSimulationOptions() SimulationOptions {
	return SimulationOptions{
		ProfitFactorCap: ProfitFactorCap,
	}
}

// ValidateCapital rejects non-positive or non-finite capital.
func ValidateCapital(initialCapital float64) error {
	if math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) || initialCapital <= 0 {
		return errors.Newf(errors.ErrCodeInvalidCapital, "initial capital must be a positive number, got %v", initialCapital)
	}

	return nil
}

// Simulate runs the flat/long state machine over series, going all in on a buy and all out on
// a sell. Only the first signal of each calendar date is considered; signals on dates missing
// from the series are dropped. A signal the state ignores (buy while long, sell while flat)
// leaves equity unchanged on its bar. An open position at the end stays open.
//
// The returned result carries the series, signals, equity curve, trades and metrics; run
// metadata such as the ID and symbol is left to the caller.
func Simulate(series types.Series, signals []types.Signal, initialCapital float64, options SimulationOptions) (*types.BacktestResult, error) {
	if err := ValidateCapital(initialCapital); err != nil {
		return nil, err
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}

	if options.ProfitFactorCap <= 0 {
		options.ProfitFactorCap = ProfitFactorCap
	}

	signalsByDate := make(map[int64]types.Signal, len(signals))
	for _, signal := range signals {
		if math.IsNaN(signal.Price) || signal.Price <= 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidParameter, "signal on %s has non-positive price %v", signal.Date.Format(time.DateOnly), signal.Price)
		}

		key := types.NormalizeDate(signal.Date).Unix()
		if _, exists := signalsByDate[key]; !exists {
			signalsByDate[key] = signal
		}
	}

	state := NewBacktestState(initialCapital)
	curve := make([]types.EquityPoint, 0, len(series))

	for _, bar := range series {
		signal, hasSignal := signalsByDate[types.NormalizeDate(bar.Date).Unix()]
		if hasSignal {
			state.Apply(bar.Date, signal)
		} else {
			state.MarkToMarket(bar.Price)
		}

		curve = append(curve, state.Record(bar.Date))
	}

	result := &types.BacktestResult{
		InitialCapital: initialCapital,
		Series:         series,
		Signals:        signals,
		EquityCurve:    curve,
		Trades:         state.Trades(),
		Metrics:        calculateMetrics(series, signals, curve, state.Trades(), initialCapital, options),
		WeekdayReturns: calculateWeekdayReturns(curve, initialCapital),
		MonthlyPnL:     calculateMonthlyPnL(curve, initialCapital),
	}

	if len(series) > 0 {
		result.StartDate = series[0].Date
		result.EndDate = series[len(series)-1].Date
	}

	return result, nil
}
