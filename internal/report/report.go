// Package report writes backtest results to disk.
package report

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

const (
	StatsFileName   = "stats.yaml"
	EquityFileName  = "equity.parquet"
	SummaryFileName = "summary.yaml"
)

// EquityRecord is one row of the equity parquet file.
type EquityRecord struct {
	Date     int64   `parquet:"date,timestamp(millisecond)"` // Unix ms
	Price    float64 `parquet:"price"`
	Equity   float64 `parquet:"equity"`
	Drawdown float64 `parquet:"drawdown"`
}

// ResultFolder returns <root>/<symbol>/<timeframe>/<start>_<end>/<id>.
func ResultFolder(root string, result *types.BacktestResult) string {
	timeRange := result.StartDate.Format("20060102") + "_" + result.EndDate.Format("20060102")

	return filepath.Join(root, sanitize(result.Symbol), sanitize(string(result.Timeframe)), timeRange, result.ID)
}

// Write stores the stats and equity curve of result under its result folder and returns the folder.
func Write(root string, result *types.BacktestResult) (string, error) {
	folder := ResultFolder(root, result)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeBacktestReportFailed, err, "failed to create result folder %s", folder)
	}

	if err := types.WriteBacktestStats(filepath.Join(folder, StatsFileName), []types.BacktestStats{result.Stats()}); err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestReportFailed, "failed to write stats", err)
	}

	records := make([]EquityRecord, len(result.EquityCurve))
	for i, point := range result.EquityCurve {
		price := 0.0
		if i < len(result.Series) {
			price = result.Series[i].Price
		}

		records[i] = EquityRecord{
			Date:     point.Date.UnixMilli(),
			Price:    price,
			Equity:   point.Equity,
			Drawdown: point.Drawdown,
		}
	}

	if err := parquet.WriteFile(filepath.Join(folder, EquityFileName), records); err != nil {
		return "", errors.Wrap(errors.ErrCodeBacktestReportFailed, "failed to write equity curve", err)
	}

	return folder, nil
}

// WriteSummary writes the stats of all results, in order, to <root>/summary.yaml.
func WriteSummary(root string, results []*types.BacktestResult) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeBacktestReportFailed, err, "failed to create results folder %s", root)
	}

	stats := make([]types.BacktestStats, 0, len(results))
	for _, result := range results {
		stats = append(stats, result.Stats())
	}

	if err := types.WriteBacktestStats(filepath.Join(root, SummaryFileName), stats); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestReportFailed, "failed to write summary", err)
	}

	return nil
}

func sanitize(name string) string {
	if name == "" {
		return "_"
	}

	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
}
