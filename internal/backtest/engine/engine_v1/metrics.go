package engine

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// calculateMetrics derives the summary of a run from its realized round-trips and equity curve.
// Every ratio with a zero denominator is reported as 0.
func calculateMetrics(series types.Series, signals []types.Signal, curve []types.EquityPoint, trades []types.RoundTrip, initialCapital float64, options SimulationOptions) types.Metrics {
	metrics := types.Metrics{
		FinalEquity: initialCapital,
		SignalCount: len(signals),
	}

	if len(curve) == 0 {
		return metrics
	}

	metrics.FinalEquity = curve[len(curve)-1].Equity
	metrics.TotalReturn = (metrics.FinalEquity - initialCapital) / initialCapital * 100

	for _, point := range curve {
		metrics.MaxDrawdown = min(metrics.MaxDrawdown, point.Drawdown)
	}

	if metrics.MaxDrawdown < 0 {
		metrics.RecoveryFactor = metrics.TotalReturn / -metrics.MaxDrawdown
	}

	if first := series[0].Price; first > 0 {
		metrics.BuyAndHoldReturn = (series[len(series)-1].Price - first) / first * 100
	}

	var totalDuration time.Duration

	for _, trade := range trades {
		totalDuration += trade.Duration()

		switch {
		case trade.PnL > 0:
			metrics.WinningTrades++
			metrics.GrossProfit += trade.PnL
		case trade.PnL < 0:
			metrics.LosingTrades++
			metrics.GrossLoss -= trade.PnL
		}
	}

	metrics.TotalTrades = len(trades)
	if metrics.TotalTrades == 0 {
		return metrics
	}

	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades) * 100
	metrics.AvgTradeDuration = totalDuration / time.Duration(metrics.TotalTrades)
	metrics.AvgTradeDurationDays = metrics.AvgTradeDuration.Hours() / 24

	if metrics.GrossLoss == 0 {
		if metrics.GrossProfit > 0 {
			metrics.ProfitFactor = options.ProfitFactorCap
		}
	} else {
		metrics.ProfitFactor = metrics.GrossProfit / metrics.GrossLoss
	}

	return metrics
}

// calculateWeekdayReturns sums the per-bar equity returns, in percent, by weekday of the bar.
// All seven weekdays are reported, Monday first.
func calculateWeekdayReturns(curve []types.EquityPoint, initialCapital float64) []types.WeekdayReturn {
	if len(curve) == 0 {
		return []types.WeekdayReturn{}
	}

	sums := make(map[time.Weekday]float64, len(weekdayOrder))
	previous := initialCapital

	for _, point := range curve {
		if previous > 0 {
			sums[point.Date.Weekday()] += (point.Equity - previous) / previous * 100
		}

		previous = point.Equity
	}

	returns := make([]types.WeekdayReturn, 0, len(weekdayOrder))
	for _, weekday := range weekdayOrder {
		returns = append(returns, types.WeekdayReturn{
			Weekday:   weekday,
			ReturnPct: sums[weekday],
		})
	}

	return returns
}

// calculateMonthlyPnL reports the equity change of every calendar month in the curve, from the
// previous month's closing equity (the initial capital for the first month) to its own close.
func calculateMonthlyPnL(curve []types.EquityPoint, initialCapital float64) []types.MonthlyPnL {
	months := []types.MonthlyPnL{}
	previousClose := initialCapital

	for i, point := range curve {
		last := i == len(curve)-1
		if !last {
			next := curve[i+1].Date
			if next.Year() == point.Date.Year() && next.Month() == point.Date.Month() {
				continue
			}
		}

		pnl := 0.0
		if previousClose > 0 {
			pnl = (point.Equity - previousClose) / previousClose * 100
		}

		months = append(months, types.MonthlyPnL{
			Year:   point.Date.Year(),
			Month:  point.Date.Month(),
			PnLPct: pnl,
		})
		previousClose = point.Equity
	}

	return months
}
