package datasource

import (
	"context"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/parquet-go/parquet-go"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// BarRecord is the parquet schema of a historical bar file.
type BarRecord struct {
	Symbol string   `parquet:"symbol"`
	Date   int64    `parquet:"date,timestamp(millisecond)"` // Unix ms
	Price  float64  `parquet:"price"`
	Volume int64    `parquet:"volume"`
	RSI    *float64 `parquet:"rsi,optional"`
	MACD   *float64 `parquet:"macd,optional"`
}

// ToBar converts the record to a bar with a normalised date.
func (r BarRecord) ToBar() types.Bar {
	bar := types.Bar{
		Date:   types.NormalizeDate(time.UnixMilli(r.Date)),
		Price:  r.Price,
		Volume: r.Volume,
		RSI:    optional.None[float64](),
		MACD:   optional.None[float64](),
	}

	if r.RSI != nil {
		bar.RSI = optional.Some(*r.RSI)
	}

	if r.MACD != nil {
		bar.MACD = optional.Some(*r.MACD)
	}

	return bar
}

// NewBarRecord converts a bar of symbol to its parquet record.
func NewBarRecord(symbol string, bar types.Bar) BarRecord {
	record := BarRecord{
		Symbol: symbol,
		Date:   bar.Date.UnixMilli(),
		Price:  bar.Price,
		Volume: bar.Volume,
		RSI:    nil,
		MACD:   nil,
	}

	if bar.RSI.IsSome() {
		v := bar.RSI.Unwrap()
		record.RSI = &v
	}

	if bar.MACD.IsSome() {
		v := bar.MACD.Unwrap()
		record.MACD = &v
	}

	return record
}

// WriteBarRecords writes records to a parquet file at path.
func WriteBarRecords(path string, records []BarRecord) error {
	if err := parquet.WriteFile(path, records); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to write parquet file %s", path)
	}

	return nil
}

// ParquetDataSource reads historical bars from a parquet file with the BarRecord schema.
// The file is read on every query, so it may be replaced between runs.
type ParquetDataSource struct {
	path       string
	maxBars    int
	indicators *indicatorSet
	logger     *logger.Logger
}

// NewParquetDataSource creates a data source over the parquet file at path. Indicator columns
// missing from the file are computed with the given periods.
func NewParquetDataSource(path string, maxBars int, indicators IndicatorConfig, logger *logger.Logger) (DataSource, error) {
	if logger == nil {
		logger = nopLogger()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "parquet file %s is not readable", path)
	}

	set, err := newIndicatorSet(indicators)
	if err != nil {
		return nil, err
	}

	return &ParquetDataSource{
		path:       path,
		maxBars:    maxBars,
		indicators: set,
		logger:     logger,
	}, nil
}

// Series implements DataSource.
func (p *ParquetDataSource) Series(ctx context.Context, query SeriesQuery) (types.Series, error) {
	if query.Symbol == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := types.NormalizeDate(query.StartDate)
	end := types.NormalizeDate(query.EndDate)

	if !end.After(start) {
		return types.Series{}, nil
	}

	records, err := parquet.ReadFile[BarRecord](p.path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read parquet file %s", p.path)
	}

	series := make(types.Series, 0, len(records))
	for _, record := range records {
		if record.Symbol != query.Symbol {
			continue
		}

		bar := record.ToBar()
		if bar.Date.Before(start) || !bar.Date.Before(end) {
			continue
		}

		series = append(series, bar)
	}

	series = normalizeSeries(series, p.maxBars)
	fillMissingIndicators(series, p.indicators)

	p.logger.Debug("Read series from parquet",
		zap.String("path", p.path),
		zap.String("symbol", query.Symbol),
		zap.Int("records", len(records)),
		zap.Int("bars", len(series)),
	)

	return series, nil
}

// Close implements DataSource.
func (p *ParquetDataSource) Close() error {
	return nil
}
