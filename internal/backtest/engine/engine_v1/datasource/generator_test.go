package datasource

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type GeneratorTestSuite struct {
	suite.Suite
	start time.Time
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorTestSuite))
}

func (suite *GeneratorTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *GeneratorTestSuite) newGenerator(config GeneratorConfig, seed int64) *Generator {
	generator, err := NewGenerator(config, rand.New(rand.NewSource(seed)))
	suite.Require().NoError(err)

	return generator
}

func (suite *GeneratorTestSuite) TestBarCount() {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		maxBars  int
		expected int
	}{
		{"ten days", suite.start, suite.start.AddDate(0, 0, 10), 250, 10},
		{"capped", suite.start, suite.start.AddDate(2, 0, 0), 250, 250},
		{"same day", suite.start, suite.start, 250, 0},
		{"inverted", suite.start.AddDate(0, 0, 5), suite.start, 250, 0},
		{"intraday start normalised", suite.start.Add(20 * time.Hour), suite.start.AddDate(0, 0, 3), 250, 3},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, BarCount(tc.start, tc.end, tc.maxBars))
		})
	}
}

func (suite *GeneratorTestSuite) TestGenerateProperties() {
	config := DefaultGeneratorConfig()
	series := suite.newGenerator(config, 42).Generate(suite.start, suite.start.AddDate(0, 0, 100))

	suite.Require().Len(series, 100)
	suite.NoError(series.Validate())

	for i, bar := range series {
		suite.Equal(suite.start.AddDate(0, 0, i), bar.Date)
		suite.GreaterOrEqual(bar.Price, config.PriceFloor)
		suite.Equal(roundToDecimals(bar.Price, 2), bar.Price)
		suite.GreaterOrEqual(bar.Volume, config.VolumeMin)
		suite.Less(bar.Volume, config.VolumeMax)

		suite.Require().True(bar.RSI.IsSome())
		suite.Require().True(bar.MACD.IsSome())
		suite.GreaterOrEqual(bar.RSI.Unwrap(), config.RSIMin)
		suite.LessOrEqual(bar.RSI.Unwrap(), config.RSIMax)
		suite.GreaterOrEqual(bar.MACD.Unwrap(), config.MACDMin)
		suite.LessOrEqual(bar.MACD.Unwrap(), config.MACDMax)
	}
}

func (suite *GeneratorTestSuite) TestGenerateIsReproducible() {
	config := DefaultGeneratorConfig()
	end := suite.start.AddDate(0, 0, 60)

	first := suite.newGenerator(config, 7).Generate(suite.start, end)
	second := suite.newGenerator(config, 7).Generate(suite.start, end)
	other := suite.newGenerator(config, 8).Generate(suite.start, end)

	suite.Equal(first, second)
	suite.NotEqual(first, other)
}

func (suite *GeneratorTestSuite) TestGenerateFollowsDrawOrder() {
	config := DefaultGeneratorConfig()
	series := suite.newGenerator(config, 3).Generate(suite.start, suite.start.AddDate(0, 0, 2))

	rng := rand.New(rand.NewSource(3))
	price := 150 + rng.Float64()*50

	for _, bar := range series {
		price = math.Max(price+(rng.Float64()-0.5)*0.02*price, 10)
		rsi := 30 + rng.Float64()*40
		macd := -1 + rng.Float64()*2
		volume := int64(1_000_000 + math.Floor(rng.Float64()*5_000_000))

		suite.Equal(roundToDecimals(price, 2), bar.Price)
		suite.Equal(roundToDecimals(rsi, 2), bar.RSI.Unwrap())
		suite.Equal(roundToDecimals(macd, 2), bar.MACD.Unwrap())
		suite.Equal(volume, bar.Volume)
	}
}

func (suite *GeneratorTestSuite) TestGenerateCapsLength() {
	series := suite.newGenerator(DefaultGeneratorConfig(), 1).Generate(suite.start, suite.start.AddDate(3, 0, 0))
	suite.Len(series, 250)
}

func (suite *GeneratorTestSuite) TestGenerateEmptyRange() {
	generator := suite.newGenerator(DefaultGeneratorConfig(), 1)

	suite.Empty(generator.Generate(suite.start, suite.start))
	suite.Empty(generator.Generate(suite.start.AddDate(0, 0, 1), suite.start))
}

func (suite *GeneratorTestSuite) TestGenerateRespectsFloor() {
	config := DefaultGeneratorConfig()
	config.StartPriceMin = 10.5
	config.StartPriceMax = 11
	config.Volatility = 1.5

	series := suite.newGenerator(config, 99).Generate(suite.start, suite.start.AddDate(0, 0, 200))
	suite.Require().NotEmpty(series)

	hitFloor := false
	for _, bar := range series {
		suite.GreaterOrEqual(bar.Price, config.PriceFloor)
		if bar.Price == config.PriceFloor {
			hitFloor = true
		}
	}

	suite.True(hitFloor)
}

func (suite *GeneratorTestSuite) TestGenerateComputedIndicators() {
	config := DefaultGeneratorConfig()
	config.IndicatorMode = types.IndicatorModeComputed

	series := suite.newGenerator(config, 11).Generate(suite.start, suite.start.AddDate(0, 0, 60))
	suite.Require().Len(series, 60)

	// RSI(14) is first defined at index 14, MACD(12, 26) at index 25
	suite.True(series[13].RSI.IsNone())
	suite.True(series[14].RSI.IsSome())
	suite.True(series[24].MACD.IsNone())
	suite.True(series[25].MACD.IsSome())

	for _, bar := range series[14:] {
		suite.GreaterOrEqual(bar.RSI.Unwrap(), 0.0)
		suite.LessOrEqual(bar.RSI.Unwrap(), 100.0)
	}
}

func (suite *GeneratorTestSuite) TestNewGeneratorRejectsInvalidPeriods() {
	config := DefaultGeneratorConfig()
	config.IndicatorMode = types.IndicatorModeComputed
	config.Indicators.MACDFastPeriod = 30

	_, err := NewGenerator(config, rand.New(rand.NewSource(1)))
	suite.Error(err)
}
