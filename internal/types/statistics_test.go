package types

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type StatisticsTestSuite struct {
	suite.Suite
	tempDir string
}

func TestStatisticsSuite(t *testing.T) {
	suite.Run(t, new(StatisticsTestSuite))
}

func (suite *StatisticsTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *StatisticsTestSuite) result() *BacktestResult {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return &BacktestResult{
		ID:             "abc",
		Timestamp:      start,
		Symbol:         "BTC/USD",
		Timeframe:      TimeframeOneDay,
		StartDate:      start,
		EndDate:        start.AddDate(0, 1, 0),
		InitialCapital: 10000,
		Metrics: Metrics{
			TotalReturn:    12.5,
			WinRate:        60,
			ProfitFactor:   1.8,
			MaxDrawdown:    -4.2,
			RecoveryFactor: 2.98,
			TotalTrades:    5,
			FinalEquity:    11250,
		},
		WeekdayReturns: []WeekdayReturn{{Weekday: time.Monday, ReturnPct: 1.5}},
		MonthlyPnL:     []MonthlyPnL{{Year: 2024, Month: time.January, PnLPct: 12.5}},
		Series:         Series{{Date: start, Price: 100}, {Date: start.AddDate(0, 0, 1), Price: 101}},
	}
}

func (suite *StatisticsTestSuite) TestStats() {
	stats := suite.result().Stats()

	suite.Equal("abc", stats.ID)
	suite.Equal("2024-01-01", stats.StartDate)
	suite.Equal("2024-02-01", stats.EndDate)
	suite.Equal(2, stats.Bars)
	suite.Equal(12.5, stats.Metrics.TotalReturn)
	suite.Len(stats.WeekdayReturns, 1)
}

func (suite *StatisticsTestSuite) TestWriteBacktestStats() {
	filePath := filepath.Join(suite.tempDir, "stats.yaml")
	suite.Require().NoError(WriteBacktestStats(filePath, []BacktestStats{suite.result().Stats()}))

	data, err := os.ReadFile(filePath)
	suite.Require().NoError(err)

	var readStats []BacktestStats
	suite.Require().NoError(yaml.Unmarshal(data, &readStats))
	suite.Require().Len(readStats, 1)
	suite.Equal("BTC/USD", readStats[0].Symbol)
	suite.Equal(TimeframeOneDay, readStats[0].Timeframe)
	suite.Equal(5, readStats[0].Metrics.TotalTrades)
	suite.Equal(-4.2, readStats[0].Metrics.MaxDrawdown)
	suite.Equal(time.January, readStats[0].MonthlyPnL[0].Month)
	suite.Equal(time.Monday, readStats[0].WeekdayReturns[0].Weekday)
}

func (suite *StatisticsTestSuite) TestWriteBacktestStatsEmpty() {
	filePath := filepath.Join(suite.tempDir, "empty_stats.yaml")
	suite.Require().NoError(WriteBacktestStats(filePath, []BacktestStats{}))

	data, err := os.ReadFile(filePath)
	suite.Require().NoError(err)

	var readStats []BacktestStats
	suite.Require().NoError(yaml.Unmarshal(data, &readStats))
	suite.Empty(readStats)
}

func (suite *StatisticsTestSuite) TestWriteBacktestStatsInvalidPath() {
	filePath := filepath.Join(suite.tempDir, "nonexistent", "dir", "stats.yaml")
	suite.Error(WriteBacktestStats(filePath, []BacktestStats{suite.result().Stats()}))
}
