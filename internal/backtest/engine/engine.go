package engine

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBatchStartCallback is called once before any run of a batch starts.
type OnBatchStartCallback func(totalRuns int) error

// OnBatchEndCallback is called when the batch completes (always called via defer).
type OnBatchEndCallback func(err error)

// OnRunStartCallback is called when a run begins.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, runIndex int, request Request) error

// OnRunEndCallback is called when a run ends. result is nil when the run failed.
type OnRunEndCallback func(runIndex int, result *types.BacktestResult, err error)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBatchStart *OnBatchStartCallback
	OnBatchEnd   *OnBatchEndCallback
	OnRunStart   *OnRunStartCallback
	OnRunEnd     *OnRunEndCallback
}

// Request describes one backtest run.
type Request struct {
	// Symbol is an opaque label, except for historical data sources which select bars by it
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	// Timeframe is informational only
	Timeframe types.Timeframe `yaml:"timeframe" json:"timeframe" validate:"required,oneof=1m 5m 15m 1h 4h 1D 1W"`
	// StartDate is inclusive, EndDate exclusive. An inverted range yields an empty result.
	StartDate      time.Time `yaml:"start_date" json:"start_date"`
	EndDate        time.Time `yaml:"end_date" json:"end_date"`
	InitialCapital float64   `yaml:"initial_capital" json:"initial_capital"`
	// Seed pins the random source of the run. Without it the engine seed applies.
	Seed optional.Option[int64] `yaml:"seed" json:"seed"`
}

type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataSource sets the data source runs read their series from.
	// Without one, every run generates its own synthetic series.
	SetDataSource(dataSource datasource.DataSource) error
	// Run executes a single backtest. Invalid capital is rejected before any work.
	Run(ctx context.Context, request Request) (*types.BacktestResult, error)
	// RunBatch executes independent runs in parallel. Results keep the order of requests.
	// The context is checked before each run starts; a started run always completes.
	RunBatch(ctx context.Context, requests []Request, callbacks LifecycleCallbacks) ([]*types.BacktestResult, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
