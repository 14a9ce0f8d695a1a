package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Bar is one time step of a series. Bars are immutable once produced.
type Bar struct {
	// Date is the calendar date of the bar, normalised to UTC midnight.
	Date time.Time `json:"date" yaml:"date"`
	// Price is the closing price of the bar. Always positive.
	Price float64 `json:"price" yaml:"price"`
	// Volume is the traded volume of the bar.
	Volume int64 `json:"volume" yaml:"volume"`
	// RSI is the relative strength index in [0, 100], None when not available.
	RSI optional.Option[float64] `json:"rsi" yaml:"-"`
	// MACD is the MACD line value, None when not available.
	MACD optional.Option[float64] `json:"macd" yaml:"-"`
}

// Series is an ordered sequence of bars, strictly increasing by date.
type Series []Bar

// NormalizeDate truncates t to midnight UTC of its calendar date.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate checks that dates are strictly increasing and prices are positive.
// An empty series is valid.
func (s Series) Validate() error {
	for i, bar := range s {
		if bar.Price <= 0 {
			return errors.Newf(errors.ErrCodeInvalidSeries, "bar %d (%s) has non-positive price %v", i, bar.Date.Format(time.DateOnly), bar.Price)
		}

		if bar.Volume < 0 {
			return errors.Newf(errors.ErrCodeInvalidSeries, "bar %d (%s) has negative volume %d", i, bar.Date.Format(time.DateOnly), bar.Volume)
		}

		if i > 0 && !bar.Date.After(s[i-1].Date) {
			return errors.Newf(errors.ErrCodeInvalidSeries, "bar %d (%s) is not after bar %d (%s)",
				i, bar.Date.Format(time.DateOnly), i-1, s[i-1].Date.Format(time.DateOnly))
		}
	}

	return nil
}

// Prices returns the price column of the series.
func (s Series) Prices() []float64 {
	prices := make([]float64, len(s))
	for i, bar := range s {
		prices[i] = bar.Price
	}

	return prices
}

// Dates returns the date column of the series.
func (s Series) Dates() []time.Time {
	dates := make([]time.Time, len(s))
	for i, bar := range s {
		dates[i] = bar.Date
	}

	return dates
}

// IndexOf returns the index of the bar on the given date, or -1.
func (s Series) IndexOf(date time.Time) int {
	date = NormalizeDate(date)
	for i, bar := range s {
		if bar.Date.Equal(date) {
			return i
		}
	}

	return -1
}
