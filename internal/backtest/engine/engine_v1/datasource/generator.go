package datasource

import (
	"math"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// GeneratorConfig configures how synthetic series are generated.
type GeneratorConfig struct {
	// StartPriceMin and StartPriceMax bound the uniformly drawn starting price
	StartPriceMin float64 `yaml:"start_price_min" json:"start_price_min" jsonschema:"title=Start Price Min,description=Lower bound of the starting price" validate:"gt=0"`
	StartPriceMax float64 `yaml:"start_price_max" json:"start_price_max" jsonschema:"title=Start Price Max,description=Upper bound of the starting price" validate:"gtefield=StartPriceMin"`
	// Volatility scales the per-bar perturbation: price += (u - 0.5) * Volatility * price
	Volatility float64 `yaml:"volatility" json:"volatility" jsonschema:"title=Volatility,description=Per-bar price perturbation factor" validate:"gte=0,lt=2"`
	// PriceFloor is the positive lower clamp applied to every price
	PriceFloor float64 `yaml:"price_floor" json:"price_floor" jsonschema:"title=Price Floor,description=Minimum price of any bar" validate:"gt=0"`
	// MaxBars caps the length of a generated series
	MaxBars int `yaml:"max_bars" json:"max_bars" jsonschema:"title=Max Bars,description=Maximum number of bars in a series" validate:"gt=0"`
	// VolumeMin and VolumeMax bound the uniformly drawn volume
	VolumeMin int64 `yaml:"volume_min" json:"volume_min" jsonschema:"title=Volume Min" validate:"gte=0"`
	VolumeMax int64 `yaml:"volume_max" json:"volume_max" jsonschema:"title=Volume Max" validate:"gtefield=VolumeMin"`
	// RSIMin and RSIMax bound sampled RSI values
	RSIMin float64 `yaml:"rsi_min" json:"rsi_min" jsonschema:"title=RSI Min" validate:"gte=0,lte=100"`
	RSIMax float64 `yaml:"rsi_max" json:"rsi_max" jsonschema:"title=RSI Max" validate:"gtefield=RSIMin,lte=100"`
	// MACDMin and MACDMax bound sampled MACD values
	MACDMin float64 `yaml:"macd_min" json:"macd_min" jsonschema:"title=MACD Min"`
	MACDMax float64 `yaml:"macd_max" json:"macd_max" jsonschema:"title=MACD Max" validate:"gtefield=MACDMin"`
	// IndicatorMode selects sampled or price-derived indicator values
	IndicatorMode types.IndicatorMode `yaml:"indicator_mode" json:"indicator_mode" jsonschema:"title=Indicator Mode,description=sampled draws RSI/MACD independently of price; computed derives them from price" validate:"oneof=sampled computed"`
	// Indicators configures the periods used when indicator values are computed
	Indicators IndicatorConfig `yaml:"indicators" json:"indicators" jsonschema:"title=Indicators"`
}

// IndicatorConfig holds the periods of the computed RSI and MACD.
type IndicatorConfig struct {
	RSIPeriod      int `yaml:"rsi_period" json:"rsi_period" jsonschema:"title=RSI Period" validate:"gt=0"`
	MACDFastPeriod int `yaml:"macd_fast_period" json:"macd_fast_period" jsonschema:"title=MACD Fast Period" validate:"gt=0"`
	MACDSlowPeriod int `yaml:"macd_slow_period" json:"macd_slow_period" jsonschema:"title=MACD Slow Period" validate:"gtfield=MACDFastPeriod"`
}

// DefaultGeneratorConfig returns the reference generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		StartPriceMin: 150,
		StartPriceMax: 200,
		Volatility:    0.02,
		PriceFloor:    10,
		MaxBars:       250,
		VolumeMin:     1_000_000,
		VolumeMax:     6_000_000,
		RSIMin:        30,
		RSIMax:        70,
		MACDMin:       -1,
		MACDMax:       1,
		IndicatorMode: types.IndicatorModeSampled,
		Indicators:    DefaultIndicatorConfig(),
	}
}

// DefaultIndicatorConfig returns the conventional RSI(14) and MACD(12, 26) periods.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		RSIPeriod:      14,
		MACDFastPeriod: 12,
		MACDSlowPeriod: 26,
	}
}

// Generator produces synthetic daily series. It is not safe for concurrent use;
// give every run its own generator and random source.
type Generator struct {
	config     GeneratorConfig
	rng        *rand.Rand
	indicators *indicatorSet
}

// NewGenerator creates a generator drawing from rng.
// Use a fixed seed for reproducible results in tests.
func NewGenerator(config GeneratorConfig, rng *rand.Rand) (*Generator, error) {
	var indicators *indicatorSet

	if config.IndicatorMode == types.IndicatorModeComputed {
		set, err := newIndicatorSet(config.Indicators)
		if err != nil {
			return nil, err
		}

		indicators = set
	}

	return &Generator{
		config:     config,
		rng:        rng,
		indicators: indicators,
	}, nil
}

// Generate creates one bar per day from start, min(days between start and end, MaxBars) bars.
// end <= start yields an empty series.
func (g *Generator) Generate(start time.Time, end time.Time) types.Series {
	count := BarCount(start, end, g.config.MaxBars)
	if count == 0 {
		return types.Series{}
	}

	start = types.NormalizeDate(start)
	series := make(types.Series, count)
	currentPrice := g.config.StartPriceMin + g.rng.Float64()*(g.config.StartPriceMax-g.config.StartPriceMin)
	sampled := g.indicators == nil

	for i := 0; i < count; i++ {
		change := (g.rng.Float64() - 0.5) * g.config.Volatility * currentPrice
		currentPrice = math.Max(currentPrice+change, g.config.PriceFloor)

		bar := types.Bar{
			Date:   start.AddDate(0, 0, i),
			Price:  math.Max(roundToDecimals(currentPrice, 2), g.config.PriceFloor),
			Volume: 0,
			RSI:    optional.None[float64](),
			MACD:   optional.None[float64](),
		}

		if sampled {
			rsi := g.config.RSIMin + g.rng.Float64()*(g.config.RSIMax-g.config.RSIMin)
			macd := g.config.MACDMin + g.rng.Float64()*(g.config.MACDMax-g.config.MACDMin)
			bar.RSI = optional.Some(roundToDecimals(rsi, 2))
			bar.MACD = optional.Some(roundToDecimals(macd, 2))
		}

		bar.Volume = g.config.VolumeMin + int64(math.Floor(g.rng.Float64()*float64(g.config.VolumeMax-g.config.VolumeMin)))
		series[i] = bar
	}

	if !sampled {
		g.indicators.fill(series, true, true)
	}

	return series
}

// BarCount returns min(whole days between start and end, maxBars), or 0 when end <= start.
func BarCount(start time.Time, end time.Time, maxBars int) int {
	start = types.NormalizeDate(start)
	end = types.NormalizeDate(end)

	if !end.After(start) {
		return 0
	}

	days := int(end.Sub(start) / (24 * time.Hour))

	return min(days, maxBars)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
