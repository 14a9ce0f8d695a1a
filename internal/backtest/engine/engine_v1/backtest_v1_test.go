package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	engine_types "github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/mocks"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, config string) *BacktestEngineV1 {
	t.Helper()

	engine := NewBacktestEngineV1WithLogger(logger.NewNopLogger())
	require.NoError(t, engine.Initialize(config))

	return engine.(*BacktestEngineV1)
}

func testRequest(days int) engine_types.Request {
	return engine_types.Request{
		Symbol:         "AAPL",
		Timeframe:      types.TimeframeOneDay,
		StartDate:      testStart,
		EndDate:        testStart.AddDate(0, 0, days),
		InitialCapital: 10000,
		Seed:           optional.None[int64](),
	}
}

func TestBacktestEngineV1_Initialize(t *testing.T) {
	t.Run("Defaults when config is empty", func(t *testing.T) {
		engine := newTestEngine(t, "")

		assert.Equal(t, EmptyConfig(), engine.config)
	})

	t.Run("Invalid YAML", func(t *testing.T) {
		engine := NewBacktestEngineV1WithLogger(logger.NewNopLogger())

		err := engine.Initialize("max_parallel_runs: [")
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestConfigError))
	})

	t.Run("Invalid values", func(t *testing.T) {
		engine := NewBacktestEngineV1WithLogger(logger.NewNopLogger())

		err := engine.Initialize("max_parallel_runs: 0")
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestConfigError))
	})

	t.Run("Run before Initialize", func(t *testing.T) {
		engine := NewBacktestEngineV1()

		_, err := engine.Run(context.Background(), testRequest(10))
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestConfigError))
	})
}

func TestBacktestEngineV1_Run(t *testing.T) {
	t.Run("Synthetic run", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 42")

		result, err := engine.Run(context.Background(), testRequest(120))
		require.NoError(t, err)

		assert.NotEmpty(t, result.ID)
		assert.Equal(t, "AAPL", result.Symbol)
		assert.Equal(t, types.TimeframeOneDay, result.Timeframe)
		assert.Equal(t, testStart, result.StartDate)
		assert.Equal(t, 10000.0, result.InitialCapital)
		assert.Len(t, result.Series, 120)
		assert.Len(t, result.EquityCurve, 120)
		assert.Equal(t, len(result.Signals), result.Metrics.SignalCount)
		assert.Len(t, result.WeekdayReturns, 7)
		assert.NoError(t, result.Series.Validate())
	})

	t.Run("Same seed gives same result", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 42")

		first, err := engine.Run(context.Background(), testRequest(200))
		require.NoError(t, err)
		second, err := engine.Run(context.Background(), testRequest(200))
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, first.Series, second.Series)
		assert.Equal(t, first.Signals, second.Signals)
		assert.Equal(t, first.EquityCurve, second.EquityCurve)
		assert.Equal(t, first.Metrics, second.Metrics)
	})

	t.Run("Request seed overrides config seed", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 1")

		request := testRequest(50)
		request.Seed = optional.Some(int64(2))

		fromRequest, err := engine.Run(context.Background(), request)
		require.NoError(t, err)

		fromConfig, err := engine.Run(context.Background(), testRequest(50))
		require.NoError(t, err)

		assert.NotEqual(t, fromRequest.Series, fromConfig.Series)
	})

	t.Run("Invalid capital is rejected first", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 42")

		request := testRequest(10)
		request.InitialCapital = -5
		request.Symbol = ""

		result, err := engine.Run(context.Background(), request)
		assert.Nil(t, result)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidCapital))
	})

	t.Run("Invalid timeframe", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 42")

		request := testRequest(10)
		request.Timeframe = "2D"

		_, err := engine.Run(context.Background(), request)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidTimeframe))
	})

	t.Run("Missing symbol", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 42")

		request := testRequest(10)
		request.Symbol = ""

		_, err := engine.Run(context.Background(), request)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidParameter))
	})

	t.Run("Empty range yields empty result", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 42")

		result, err := engine.Run(context.Background(), testRequest(0))
		require.NoError(t, err)

		assert.Empty(t, result.Series)
		assert.Empty(t, result.Signals)
		assert.Empty(t, result.EquityCurve)
		assert.Equal(t, 0.0, result.Metrics.TotalReturn)
		assert.Equal(t, 0.0, result.Metrics.MaxDrawdown)
		assert.Equal(t, 10000.0, result.Metrics.FinalEquity)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 42")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.Run(ctx, testRequest(10))
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestCancelled))
	})

	t.Run("Series from data source", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		rsi := map[int]float64{}
		for i := 0; i < 30; i++ {
			rsi[i] = 50
		}
		rsi[20] = 25 // bounce at 21
		rsi[24] = 75 // overbought at 24

		prices := make([]float64, 30)
		for i := range prices {
			prices[i] = 100 + float64(i)
		}

		series := mocks.WithRSI(mocks.SeriesFromPrices(testStart, prices...), rsi)
		request := testRequest(30)

		mockDatasource := mocks.NewMockDataSource(ctrl)
		mockDatasource.EXPECT().Series(gomock.Any(), datasource.SeriesQuery{
			Symbol:    request.Symbol,
			Timeframe: request.Timeframe,
			StartDate: request.StartDate,
			EndDate:   request.EndDate,
		}).Return(series, nil).Times(1)

		engine := newTestEngine(t, "seed: 42")
		require.NoError(t, engine.SetDataSource(mockDatasource))

		result, err := engine.Run(context.Background(), request)
		require.NoError(t, err)

		require.Len(t, result.Signals, 2)
		assert.Equal(t, types.SignalTypeBuy, result.Signals[0].Type)
		assert.Equal(t, types.SignalTypeSell, result.Signals[1].Type)

		require.Len(t, result.Trades, 1)
		assert.Equal(t, 121.0, result.Trades[0].EntryPrice)
		assert.Equal(t, 124.0, result.Trades[0].ExitPrice)
		assert.Equal(t, 1, result.Metrics.WinningTrades)
	})

	t.Run("Data source error is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDatasource := mocks.NewMockDataSource(ctrl)
		mockDatasource.EXPECT().Series(gomock.Any(), gomock.Any()).
			Return(nil, errors.New(errors.ErrCodeQueryFailed, "boom")).Times(1)

		engine := newTestEngine(t, "seed: 42")
		require.NoError(t, engine.SetDataSource(mockDatasource))

		_, err := engine.Run(context.Background(), testRequest(10))
		assert.True(t, errors.HasCode(err, errors.ErrCodeQueryFailed))
	})
}

func TestBacktestEngineV1_RunBatch(t *testing.T) {
	t.Run("Results keep request order", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 100\nmax_parallel_runs: 3")

		requests := make([]engine_types.Request, 8)
		for i := range requests {
			requests[i] = testRequest(30 + i)
			requests[i].Symbol = fmt.Sprintf("SYM%d", i)
		}

		var started, ended atomic.Int32

		var batchTotal int

		var batchErr error

		onBatchStart := engine_types.OnBatchStartCallback(func(totalRuns int) error {
			batchTotal = totalRuns

			return nil
		})
		onBatchEnd := engine_types.OnBatchEndCallback(func(err error) {
			batchErr = err
		})
		onRunStart := engine_types.OnRunStartCallback(func(runID string, runIndex int, request engine_types.Request) error {
			started.Add(1)

			return nil
		})
		onRunEnd := engine_types.OnRunEndCallback(func(runIndex int, result *types.BacktestResult, err error) {
			ended.Add(1)
		})

		results, err := engine.RunBatch(context.Background(), requests, engine_types.LifecycleCallbacks{
			OnBatchStart: &onBatchStart,
			OnBatchEnd:   &onBatchEnd,
			OnRunStart:   &onRunStart,
			OnRunEnd:     &onRunEnd,
		})
		require.NoError(t, err)
		require.Len(t, results, len(requests))

		for i, result := range results {
			assert.Equal(t, requests[i].Symbol, result.Symbol)
			assert.Len(t, result.Series, 30+i)
		}

		assert.Equal(t, 8, batchTotal)
		assert.NoError(t, batchErr)
		assert.Equal(t, int32(8), started.Load())
		assert.Equal(t, int32(8), ended.Load())
	})

	t.Run("Batch runs match single runs with the same seed", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 5")

		requests := []engine_types.Request{testRequest(100), testRequest(100)}
		results, err := engine.RunBatch(context.Background(), requests, engine_types.LifecycleCallbacks{})
		require.NoError(t, err)

		// run i uses seed + i
		single := testRequest(100)
		single.Seed = optional.Some(int64(6))
		expected, err := engine.Run(context.Background(), single)
		require.NoError(t, err)

		assert.Equal(t, expected.Series, results[1].Series)
		assert.NotEqual(t, results[0].Series, results[1].Series)
	})

	t.Run("Failing run fails the batch", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 5")

		var batchErr error

		onBatchEnd := engine_types.OnBatchEndCallback(func(err error) {
			batchErr = err
		})

		bad := testRequest(10)
		bad.InitialCapital = 0

		results, err := engine.RunBatch(context.Background(), []engine_types.Request{testRequest(10), bad}, engine_types.LifecycleCallbacks{
			OnBatchEnd: &onBatchEnd,
		})
		assert.Nil(t, results)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidCapital))
		assert.Equal(t, err, batchErr)
	})

	t.Run("Batch start callback can abort", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 5")

		onBatchStart := engine_types.OnBatchStartCallback(func(totalRuns int) error {
			return fmt.Errorf("not now")
		})

		_, err := engine.RunBatch(context.Background(), []engine_types.Request{testRequest(10)}, engine_types.LifecycleCallbacks{
			OnBatchStart: &onBatchStart,
		})
		assert.EqualError(t, err, "not now")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		engine := newTestEngine(t, "seed: 5")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.RunBatch(ctx, []engine_types.Request{testRequest(10)}, engine_types.LifecycleCallbacks{})
		assert.True(t, errors.HasCode(err, errors.ErrCodeBacktestCancelled))
	})
}

func TestBacktestEngineV1_GetConfigSchema(t *testing.T) {
	engine := newTestEngine(t, "")

	schema, err := engine.GetConfigSchema()
	require.NoError(t, err)
	assert.Contains(t, schema, "backtest-engine-v1-config")
}
