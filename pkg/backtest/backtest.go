// Package backtest is the library surface of the backtesting engine.
//
// It composes three pure stages: a series is generated (or loaded), signals are detected on it,
// and a portfolio is simulated over the series and signals. Every call is synchronous and
// takes its randomness explicitly, so a fixed seed reproduces a run exactly.
//
//	rng := rand.New(rand.NewSource(42))
//	series := backtest.GenerateSeries(start, end, rng)
//	signals := backtest.DetectSignals(series, rng)
//	result, err := backtest.Simulate(series, signals, 10000)
package backtest

import (
	"context"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/signal"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

type (
	Bar            = types.Bar
	Series         = types.Series
	Signal         = types.Signal
	SignalType     = types.SignalType
	EquityPoint    = types.EquityPoint
	RoundTrip      = types.RoundTrip
	Metrics        = types.Metrics
	WeekdayReturn  = types.WeekdayReturn
	MonthlyPnL     = types.MonthlyPnL
	BacktestResult = types.BacktestResult
	Timeframe      = types.Timeframe
	Request        = engine.Request
)

const (
	SignalTypeBuy  = types.SignalTypeBuy
	SignalTypeSell = types.SignalTypeSell
)

// GenerateSeries generates a synthetic daily series over [start, end) with the default
// generator. end <= start yields an empty series. A nil rng is replaced by a time-seeded one,
// so only a caller-supplied rng gives reproducible output.
func GenerateSeries(start time.Time, end time.Time, rng *rand.Rand) Series {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// the default configuration samples indicators, which never fails to build
	generator, _ := datasource.NewGenerator(datasource.DefaultGeneratorConfig(), rng)

	return generator.Generate(start, end)
}

// DetectSignals runs the RSI and MACD cross rules over series. With a nil rng the MACD rule
// evaluates every bar; otherwise it is gated at 5% per bar, drawing from rng.
func DetectSignals(series Series, rng *rand.Rand) []Signal {
	config := signal.DefaultDetectorConfig()
	if rng != nil {
		config = signal.ReferenceDetectorConfig()
	}

	// both configurations are valid for the given rng
	detector, _ := signal.NewDetectorFromConfig(config, rng)

	return detector.Detect(series)
}

// Simulate runs the portfolio over series and signals. Non-positive capital is rejected
// with an InvalidCapital error before any work.
func Simulate(series Series, signals []Signal, initialCapital float64) (*BacktestResult, error) {
	return engine_v1.Simulate(series, signals, initialCapital, engine_v1.DefaultSimulationOptions())
}

// RunBacktest generates a series, detects signals and simulates them. symbol and timeframe
// are labels carried into the result. A zero seed draws a time-based seed.
func RunBacktest(ctx context.Context, symbol string, timeframe Timeframe, start time.Time, end time.Time, initialCapital float64, seed int64) (*BacktestResult, error) {
	backtestEngine := engine_v1.NewBacktestEngineV1WithLogger(logger.NewNopLogger())
	if err := backtestEngine.Initialize(""); err != nil {
		return nil, err
	}

	request := Request{
		Symbol:         symbol,
		Timeframe:      timeframe,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: initialCapital,
		Seed:           optional.None[int64](),
	}

	if seed != 0 {
		request.Seed = optional.Some(seed)
	}

	return backtestEngine.Run(ctx, request)
}
