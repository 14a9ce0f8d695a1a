package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// SeriesGenerator generates daily series with realistic price paths for tests.
type SeriesGenerator struct {
	rng *rand.Rand
}

// NewSeriesGenerator creates a new SeriesGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewSeriesGenerator(seed int64) *SeriesGenerator {
	return &SeriesGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// SeriesConfig configures how a series is generated.
type SeriesConfig struct {
	// StartDate is the date of the first bar
	StartDate time.Time
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultSeriesConfig returns a sensible default configuration.
func DefaultSeriesConfig() SeriesConfig {
	return SeriesConfig{
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:          250,
		InitialPrice:   100.0,
		Volatility:     0.02, // 2% per bar
		Trend:          0.0,  // neutral
		VolumeBase:     1_000_000,
		VolumeVariance: 0.3,
	}
}

// Generate creates a series following a geometric Brownian motion. Indicator columns are
// left empty; use WithRSI and WithMACD to script them.
func (g *SeriesGenerator) Generate(config SeriesConfig) types.Series {
	series := make(types.Series, config.Count)
	price := config.InitialPrice
	start := types.NormalizeDate(config.StartDate)

	for i := 0; i < config.Count; i++ {
		// Using Box-Muller transform for normal distribution
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count) // Distribute trend across bars

		next := price * (1 + config.Volatility*z + drift)
		if next <= 0 {
			next = price * 0.99 // Prevent negative prices
		}

		volume := config.VolumeBase * (1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		series[i] = types.Bar{
			Date:   start.AddDate(0, 0, i),
			Price:  roundToDecimals(next, 2),
			Volume: int64(volume),
			RSI:    optional.None[float64](),
			MACD:   optional.None[float64](),
		}

		price = next
	}

	return series
}

// SeriesFromPrices builds one daily bar per price starting at start, without indicators.
func SeriesFromPrices(start time.Time, prices ...float64) types.Series {
	start = types.NormalizeDate(start)
	series := make(types.Series, len(prices))

	for i, price := range prices {
		series[i] = types.Bar{
			Date:   start.AddDate(0, 0, i),
			Price:  price,
			Volume: 1_000_000,
			RSI:    optional.None[float64](),
			MACD:   optional.None[float64](),
		}
	}

	return series
}

// WithRSI sets the RSI of the bar at each index of values.
func WithRSI(series types.Series, values map[int]float64) types.Series {
	for i, v := range values {
		series[i].RSI = optional.Some(v)
	}

	return series
}

// WithMACD sets the MACD of the bar at each index of values.
func WithMACD(series types.Series, values map[int]float64) types.Series {
	for i, v := range values {
		series[i].MACD = optional.Some(v)
	}

	return series
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
