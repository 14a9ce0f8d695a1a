package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db         *sql.DB
	logger     *logger.Logger
	sq         squirrel.StatementBuilderType
	maxBars    int
	indicators *indicatorSet
}

// NewDuckDBDataSource opens an in-memory DuckDB database and exposes the parquet file at path
// as the bars view. Dates are compared as Unix milliseconds so the session time zone never applies.
func NewDuckDBDataSource(path string, maxBars int, indicators IndicatorConfig, logger *logger.Logger) (DataSource, error) {
	if logger == nil {
		logger = nopLogger()
	}

	set, err := newIndicatorSet(indicators)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	source := &DuckDBDataSource{
		db:         db,
		logger:     logger,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		maxBars:    maxBars,
		indicators: set,
	}

	if err := source.initialize(path); err != nil {
		_ = db.Close()

		return nil, err
	}

	return source, nil
}

func (d *DuckDBDataSource) initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	// Squirrel doesn't support CREATE VIEW and read_parquet takes no placeholders
	query := fmt.Sprintf(`
		CREATE VIEW bars AS
		SELECT symbol, epoch_ms(date) AS date_ms, price, volume, rsi, macd
		FROM read_parquet('%s');
	`, strings.ReplaceAll(path, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create view over %s", path)
	}

	return nil
}

// Series implements DataSource.
func (d *DuckDBDataSource) Series(ctx context.Context, query SeriesQuery) (types.Series, error) {
	if query.Symbol == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "symbol is required")
	}

	start := types.NormalizeDate(query.StartDate)
	end := types.NormalizeDate(query.EndDate)

	if !end.After(start) {
		return types.Series{}, nil
	}

	sqlQuery, args, err := d.sq.
		Select("date_ms", "price", "volume", "rsi", "macd").
		From("bars").
		Where(squirrel.And{
			squirrel.Eq{"symbol": query.Symbol},
			squirrel.GtOrEq{"date_ms": start.UnixMilli()},
			squirrel.Lt{"date_ms": end.UnixMilli()},
		}).
		OrderBy("date_ms ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query bars for %s", query.Symbol)
	}
	defer rows.Close()

	series := types.Series{}

	for rows.Next() {
		var (
			dateMs int64
			price  float64
			volume int64
			rsi    sql.NullFloat64
			macd   sql.NullFloat64
		)

		if err := rows.Scan(&dateMs, &price, &volume, &rsi, &macd); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		series = append(series, types.Bar{
			Date:   types.NormalizeDate(time.UnixMilli(dateMs)),
			Price:  price,
			Volume: volume,
			RSI:    nullableOption(rsi),
			MACD:   nullableOption(macd),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	series = normalizeSeries(series, d.maxBars)
	fillMissingIndicators(series, d.indicators)

	d.logger.Debug("Queried series from DuckDB",
		zap.String("symbol", query.Symbol),
		zap.Int("bars", len(series)),
	)

	return series, nil
}

// Symbols returns all distinct symbols in the file.
func (d *DuckDBDataSource) Symbols(ctx context.Context) ([]string, error) {
	sqlQuery, args, err := d.sq.
		Select("DISTINCT symbol").
		From("bars").
		OrderBy("symbol").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to get symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating symbols", err)
	}

	return symbols, nil
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	if d.db != nil {
		return d.db.Close()
	}

	return nil
}

func nullableOption(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}

	return optional.Some(v.Float64)
}
