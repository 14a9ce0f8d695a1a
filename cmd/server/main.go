package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-backtest/internal/api"
	engine_v1 "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	config := engine_v1.EmptyConfig()
	configText := ""

	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}

		configText = string(data)
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
		source, err := datasource.NewDuckDBDataSource(dataPath, config.Generator.MaxBars, config.Generator.Indicators, log)
		if err != nil {
			return err
		}
		defer source.Close()

		if err := backtester.SetDataSource(source); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.NewServer(backtester, log).Start(ctx, cmd.String("address"))
}

func main() {
	cmd := &cli.Command{
		Name:    "server",
		Version: version.GetVersion(),
		Usage:   "Serve backtests over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Address to listen on",
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the engine YAML configuration",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Parquet file with historical bars, queried through DuckDB. Synthetic series are generated when empty",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
