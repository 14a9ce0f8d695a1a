package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/report"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type dataEngine string

const (
	dataEngineDuckDB  dataEngine = "duckdb"
	dataEngineParquet dataEngine = "parquet"
)

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configText, config, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	backtester := engine_v1.NewBacktestEngineV1WithLogger(log)
	if err := backtester.Initialize(configText); err != nil {
		return err
	}

	if dataPath := cmd.String("data"); dataPath != "" {
		source, err := openDataSource(dataEngine(cmd.String("engine")), dataPath, config, log)
		if err != nil {
			return err
		}
		defer source.Close()

		if err := backtester.SetDataSource(source); err != nil {
			return err
		}
	}

	capital := config.InitialCapital
	if cmd.IsSet("capital") {
		capital = cmd.Float("capital")
	}

	seed := optional.None[int64]()
	if cmd.IsSet("seed") {
		seed = optional.Some(cmd.Int64("seed"))
	}

	requests := buildRequests(
		cmd.StringSlice("symbol"),
		types.Timeframe(cmd.String("timeframe")),
		cmd.Timestamp("start"),
		cmd.Timestamp("end"),
		capital,
		seed,
	)

	var bar *progressbar.ProgressBar

	onBatchStart := engine.OnBatchStartCallback(func(totalRuns int) error {
		bar = progressbar.NewOptions(totalRuns,
			progressbar.OptionSetDescription("Backtesting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)

		return nil
	})
	onRunEnd := engine.OnRunEndCallback(func(runIndex int, _ *types.BacktestResult, err error) {
		if err != nil {
			log.Error("Run failed", zap.Int("run", runIndex), zap.Error(err))
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	})

	results, err := backtester.RunBatch(ctx, requests, engine.LifecycleCallbacks{
		OnBatchStart: &onBatchStart,
		OnBatchEnd:   nil,
		OnRunStart:   nil,
		OnRunEnd:     &onRunEnd,
	})
	if bar != nil {
		_ = bar.Finish()
	}

	if err != nil {
		return err
	}

	output := cmd.String("output")
	for _, result := range results {
		folder, err := report.Write(output, result)
		if err != nil {
			return err
		}

		log.Debug("Result written", zap.String("id", result.ID), zap.String("folder", folder))
	}

	if err := report.WriteSummary(output, results); err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, renderSummary(results))

	return nil
}

func exportAction(_ context.Context, cmd *cli.Command) error {
	_, config, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if cmd.IsSet("seed") {
		seed = cmd.Int64("seed")
	}

	records, err := generateRecords(
		config.Generator,
		cmd.StringSlice("symbol"),
		cmd.Timestamp("start"),
		cmd.Timestamp("end"),
		seed,
	)
	if err != nil {
		return err
	}

	if err := datasource.WriteBarRecords(cmd.String("output"), records); err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, TitleStyle.Render(fmt.Sprintf("Wrote %d bars to %s", len(records), cmd.String("output"))))

	return nil
}

// loadConfig reads the YAML file at path, returning its text and the parsed configuration.
// An empty path yields the default configuration.
func loadConfig(path string) (string, engine_v1.BacktestEngineV1Config, error) {
	config := engine_v1.EmptyConfig()
	if path == "" {
		return "", config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return "", config, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return "", config, err
	}

	return string(data), config, nil
}

func openDataSource(kind dataEngine, path string, config engine_v1.BacktestEngineV1Config, log *logger.Logger) (datasource.DataSource, error) {
	switch kind {
	case dataEngineDuckDB:
		return datasource.NewDuckDBDataSource(path, config.Generator.MaxBars, config.Generator.Indicators, log)
	case dataEngineParquet:
		return datasource.NewParquetDataSource(path, config.Generator.MaxBars, config.Generator.Indicators, log)
	default:
		return nil, fmt.Errorf("unknown data engine %q, expected %s or %s", kind, dataEngineDuckDB, dataEngineParquet)
	}
}

func buildRequests(symbols []string, timeframe types.Timeframe, start, end time.Time, capital float64, seed optional.Option[int64]) []engine.Request {
	requests := make([]engine.Request, 0, len(symbols))
	for i, symbol := range symbols {
		runSeed := optional.None[int64]()
		if seed.IsSome() {
			runSeed = optional.Some(seed.Unwrap() + int64(i))
		}

		requests = append(requests, engine.Request{
			Symbol:         symbol,
			Timeframe:      timeframe,
			StartDate:      start,
			EndDate:        end,
			InitialCapital: capital,
			Seed:           runSeed,
		})
	}

	return requests
}

// generateRecords builds one synthetic series per symbol, each from its own random source.
func generateRecords(config datasource.GeneratorConfig, symbols []string, start, end time.Time, seed int64) ([]datasource.BarRecord, error) {
	records := make([]datasource.BarRecord, 0)

	for i, symbol := range symbols {
		generator, err := datasource.NewGenerator(config, rand.New(rand.NewSource(seed+int64(i)))) //nolint:gosec
		if err != nil {
			return nil, err
		}

		for _, bar := range generator.Generate(start, end) {
			records = append(records, datasource.NewBarRecord(symbol, bar))
		}
	}

	return records, nil
}
