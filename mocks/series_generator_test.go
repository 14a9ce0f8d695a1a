package mocks

import (
	"testing"
	"time"
)

func TestSeriesGenerator_Generate(t *testing.T) {
	gen := NewSeriesGenerator(42) // Fixed seed for reproducibility
	config := DefaultSeriesConfig()
	config.Count = 100

	series := gen.Generate(config)

	if len(series) != 100 {
		t.Errorf("expected 100 bars, got %d", len(series))
	}

	if err := series.Validate(); err != nil {
		t.Errorf("generated series is invalid: %v", err)
	}

	for i, bar := range series {
		if bar.RSI.IsSome() || bar.MACD.IsSome() {
			t.Errorf("expected no indicators at index %d", i)
		}
	}
}

func TestSeriesGenerator_Reproducibility(t *testing.T) {
	config := DefaultSeriesConfig()
	config.Count = 50

	first := NewSeriesGenerator(7).Generate(config)
	second := NewSeriesGenerator(7).Generate(config)

	for i := range first {
		if first[i].Price != second[i].Price || first[i].Volume != second[i].Volume {
			t.Fatalf("series differ at index %d", i)
		}
	}
}

func TestSeriesFromPrices(t *testing.T) {
	start := time.Date(2024, 2, 1, 15, 0, 0, 0, time.UTC)
	series := WithRSI(SeriesFromPrices(start, 10, 11, 12), map[int]float64{1: 29})

	if len(series) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(series))
	}

	if !series[0].Date.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected normalised first date, got %v", series[0].Date)
	}

	if series[0].RSI.IsSome() || series[1].RSI.Unwrap() != 29 {
		t.Errorf("unexpected rsi values")
	}
}
