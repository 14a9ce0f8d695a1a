package datasource

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type SyntheticDataSourceTestSuite struct {
	suite.Suite
}

func TestSyntheticDataSourceSuite(t *testing.T) {
	suite.Run(t, new(SyntheticDataSourceTestSuite))
}

func (suite *SyntheticDataSourceTestSuite) TestSeries() {
	source, err := NewSyntheticDataSource(DefaultGeneratorConfig(), rand.New(rand.NewSource(5)), logger.NewNopLogger())
	suite.Require().NoError(err)
	defer source.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series, err := source.Series(context.Background(), SeriesQuery{
		Symbol:    "ANY",
		Timeframe: types.TimeframeOneDay,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 30),
	})
	suite.NoError(err)
	suite.Len(series, 30)
	suite.NoError(series.Validate())
}

func (suite *SyntheticDataSourceTestSuite) TestSeriesCancelledContext() {
	source, err := NewSyntheticDataSource(DefaultGeneratorConfig(), rand.New(rand.NewSource(5)), logger.NewNopLogger())
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = source.Series(ctx, SeriesQuery{})
	suite.ErrorIs(err, context.Canceled)
}
