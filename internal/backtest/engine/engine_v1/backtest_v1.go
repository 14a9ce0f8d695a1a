package engine

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/signal"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type BacktestEngineV1 struct {
	config      BacktestEngineV1Config
	log         *logger.Logger
	datasource  datasource.DataSource
	initialized bool
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:      EmptyConfig(),
		log:         nil,
		datasource:  nil,
		initialized: false,
	}
}

// NewBacktestEngineV1WithLogger creates an engine that logs to log instead of building its own logger.
func NewBacktestEngineV1WithLogger(log *logger.Logger) engine.Engine {
	return &BacktestEngineV1{
		config:      EmptyConfig(),
		log:         log,
		datasource:  nil,
		initialized: false,
	}
}

// Initialize implements engine.Engine. Keys missing from config keep their defaults.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed := EmptyConfig()

	// parse the config
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest config", err)
	}

	if err := parsed.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}

	b.config = parsed

	// initialize the logger
	if b.log == nil {
		log, err := logger.NewLoggerWithLevel(parsed.LogLevel)
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to create logger", err)
		}

		b.log = log
	}

	b.initialized = true

	b.log.Debug("Backtest engine initialized",
		zap.Int("max_parallel_runs", b.config.MaxParallelRuns),
		zap.Bool("seeded", b.config.Seed.IsSome()),
		zap.String("indicator_mode", string(b.config.Generator.IndicatorMode)),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(dataSource datasource.DataSource) error {
	b.datasource = dataSource

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, request engine.Request) (*types.BacktestResult, error) {
	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	return b.run(ctx, request, 0, uuid.New().String())
}

// RunBatch implements engine.Engine.
func (b *BacktestEngineV1) RunBatch(ctx context.Context, requests []engine.Request, callbacks engine.LifecycleCallbacks) (results []*types.BacktestResult, err error) {
	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	if callbacks.OnBatchEnd != nil {
		defer func() {
			(*callbacks.OnBatchEnd)(err)
		}()
	}

	if callbacks.OnBatchStart != nil {
		if err := (*callbacks.OnBatchStart)(len(requests)); err != nil {
			return nil, err
		}
	}

	results = make([]*types.BacktestResult, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.config.MaxParallelRuns)

	for i, request := range requests {
		g.Go(func() error {
			runID := uuid.New().String()

			if callbacks.OnRunStart != nil {
				if err := (*callbacks.OnRunStart)(runID, i, request); err != nil {
					return err
				}
			}

			result, err := b.run(gctx, request, i, runID)

			if callbacks.OnRunEnd != nil {
				(*callbacks.OnRunEnd)(i, result, err)
			}

			if err != nil {
				return err
			}

			results[i] = result

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to generate schema", err)
	}

	return schema, nil
}

// run executes one request. Everything it allocates belongs to this run only.
func (b *BacktestEngineV1) run(ctx context.Context, request engine.Request, runIndex int, runID string) (*types.BacktestResult, error) {
	if err := ValidateRequest(request); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestCancelled, "backtest cancelled before the run started", err)
	}

	seed := b.runSeed(request, runIndex)
	rng := rand.New(rand.NewSource(seed))

	b.log.Debug("Running backtest",
		zap.String("run_id", runID),
		zap.Int("run_index", runIndex),
		zap.String("symbol", request.Symbol),
		zap.String("timeframe", string(request.Timeframe)),
		zap.Time("start_date", request.StartDate),
		zap.Time("end_date", request.EndDate),
		zap.Int64("seed", seed),
	)

	series, err := b.loadSeries(ctx, request, rng)
	if err != nil {
		return nil, err
	}

	detector, err := signal.NewDetectorFromConfig(b.config.Detector, rng)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to create signal detector", err)
	}

	signals := detector.Detect(series)

	result, err := Simulate(series, signals, request.InitialCapital, SimulationOptions{
		ProfitFactorCap: b.config.ProfitFactorCap,
	})
	if err != nil {
		return nil, err
	}

	result.ID = runID
	result.Timestamp = time.Now()
	result.Symbol = request.Symbol
	result.Timeframe = request.Timeframe
	result.StartDate = types.NormalizeDate(request.StartDate)
	result.EndDate = types.NormalizeDate(request.EndDate)

	b.log.Debug("Backtest finished",
		zap.String("run_id", runID),
		zap.Int("bars", len(series)),
		zap.Int("signals", len(signals)),
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Float64("total_return", result.Metrics.TotalReturn),
	)

	return result, nil
}

// loadSeries reads the series from the data source, or generates one when none is set.
func (b *BacktestEngineV1) loadSeries(ctx context.Context, request engine.Request, rng *rand.Rand) (types.Series, error) {
	if b.datasource == nil {
		generator, err := datasource.NewGenerator(b.config.Generator, rng)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to create series generator", err)
		}

		return generator.Generate(request.StartDate, request.EndDate), nil
	}

	series, err := b.datasource.Series(ctx, datasource.SeriesQuery{
		Symbol:    request.Symbol,
		Timeframe: request.Timeframe,
		StartDate: request.StartDate,
		EndDate:   request.EndDate,
	})
	if err != nil {
		b.log.Debug("Failed to load series",
			zap.String("symbol", request.Symbol),
			zap.Error(err),
		)

		return nil, err
	}

	return series, nil
}

// runSeed returns the request seed, else the configured seed offset by the run index, else a
// time-based seed.
func (b *BacktestEngineV1) runSeed(request engine.Request, runIndex int) int64 {
	if request.Seed.IsSome() {
		return request.Seed.Unwrap()
	}

	if b.config.Seed.IsSome() {
		return b.config.Seed.Unwrap() + int64(runIndex)
	}

	return time.Now().UnixNano() + int64(runIndex)
}

func (b *BacktestEngineV1) preRunCheck() error {
	if !b.initialized {
		return errors.New(errors.ErrCodeBacktestConfigError, "engine is not initialized")
	}

	return nil
}

// ValidateRequest checks capital first, then the timeframe, then the remaining fields.
func ValidateRequest(request engine.Request) error {
	if err := ValidateCapital(request.InitialCapital); err != nil {
		return err
	}

	if !request.Timeframe.Valid() {
		return errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported timeframe %q", request.Timeframe)
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid backtest request", err)
	}

	return nil
}
