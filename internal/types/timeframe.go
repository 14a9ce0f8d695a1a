package types

import "time"

// Timeframe is the bar interval label of a backtest request. It is informational only:
// the simulation does not depend on it.
type Timeframe string

const (
	TimeframeOneMinute      Timeframe = "1m"
	TimeframeFiveMinutes    Timeframe = "5m"
	TimeframeFifteenMinutes Timeframe = "15m"
	TimeframeOneHour        Timeframe = "1h"
	TimeframeFourHours      Timeframe = "4h"
	TimeframeOneDay         Timeframe = "1D"
	TimeframeOneWeek        Timeframe = "1W"
)

// AllTimeframes lists the documented timeframes in ascending order.
var AllTimeframes = []Timeframe{
	TimeframeOneMinute,
	TimeframeFiveMinutes,
	TimeframeFifteenMinutes,
	TimeframeOneHour,
	TimeframeFourHours,
	TimeframeOneDay,
	TimeframeOneWeek,
}

// Valid reports whether t is one of the documented timeframes.
func (t Timeframe) Valid() bool {
	for _, tf := range AllTimeframes {
		if tf == t {
			return true
		}
	}

	return false
}

// Duration returns the length of one bar, or 0 for an unknown timeframe.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case TimeframeOneMinute:
		return time.Minute
	case TimeframeFiveMinutes:
		return 5 * time.Minute
	case TimeframeFifteenMinutes:
		return 15 * time.Minute
	case TimeframeOneHour:
		return time.Hour
	case TimeframeFourHours:
		return 4 * time.Hour
	case TimeframeOneDay:
		return 24 * time.Hour
	case TimeframeOneWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// Label returns a human readable name, e.g. "15 Minutes".
func (t Timeframe) Label() string {
	switch t {
	case TimeframeOneMinute:
		return "1 Minute"
	case TimeframeFiveMinutes:
		return "5 Minutes"
	case TimeframeFifteenMinutes:
		return "15 Minutes"
	case TimeframeOneHour:
		return "1 Hour"
	case TimeframeFourHours:
		return "4 Hours"
	case TimeframeOneDay:
		return "1 Day"
	case TimeframeOneWeek:
		return "1 Week"
	default:
		return string(t)
	}
}
