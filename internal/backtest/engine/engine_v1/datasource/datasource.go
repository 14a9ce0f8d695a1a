package datasource

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// SeriesQuery selects the bars of one symbol over [StartDate, EndDate).
type SeriesQuery struct {
	Symbol    string
	Timeframe types.Timeframe
	StartDate time.Time
	EndDate   time.Time
}

// DataSource supplies the series a backtest runs over. Implementations must be safe for
// concurrent use, since batch runs share one data source.
type DataSource interface {
	// Series returns the bars of the query, strictly increasing by date.
	// An empty or inverted range yields an empty series and no error.
	Series(ctx context.Context, query SeriesQuery) (types.Series, error)
	// Close releases any resources held by the data source
	Close() error
}
