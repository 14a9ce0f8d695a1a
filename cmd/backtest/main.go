package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Version: version.GetVersion(),
		Usage:   "Run RSI/MACD signal backtests on synthetic or historical daily series",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Symbol to backtest. Repeat the flag to run a batch",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"t"},
				Usage:   "Bar timeframe label (1m, 5m, 15m, 1h, 4h, 1D, 1W)",
				Value:   string(types.TimeframeOneDay),
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "Start date in `YYYY-MM-DD` format, inclusive",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly, time.RFC3339},
				},
			},
			&cli.TimestampFlag{
				Name:     "end",
				Usage:    "End date in `YYYY-MM-DD` format, exclusive",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{time.DateOnly, time.RFC3339},
				},
			},
			&cli.FloatFlag{
				Name:    "capital",
				Aliases: []string{"c"},
				Usage:   "Initial capital. Defaults to the configured initial capital",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the engine YAML configuration",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Seed of the random source. Run i of a batch uses seed + i",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Parquet file with historical bars. Synthetic series are generated when empty",
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: fmt.Sprintf("Query engine for --data (%s, %s)", dataEngineDuckDB, dataEngineParquet),
				Value: string(dataEngineDuckDB),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory the results are written to",
				Value:   "results",
			},
		},
		Action: backtestAction,
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Generate a synthetic series and write it to a parquet file",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "symbol",
						Aliases:  []string{"s"},
						Usage:    "Symbol to generate. Repeat the flag for several symbols",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:     "start",
						Usage:    "Start date in `YYYY-MM-DD` format, inclusive",
						Required: true,
						Config: cli.TimestampConfig{
							Layouts: []string{time.DateOnly, time.RFC3339},
						},
					},
					&cli.TimestampFlag{
						Name:     "end",
						Usage:    "End date in `YYYY-MM-DD` format, exclusive",
						Required: true,
						Config: cli.TimestampConfig{
							Layouts: []string{time.DateOnly, time.RFC3339},
						},
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the engine YAML configuration",
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Seed of the random source",
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Parquet file to write",
						Required: true,
					},
				},
				Action: exportAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
