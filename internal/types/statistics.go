package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Metrics struct {
	// Total return in percent, from the initial capital to the final equity.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// Share of closed round-trips with positive PnL, in percent.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
	// Gross profit divided by gross loss of closed round-trips.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	// Minimum drawdown across the equity curve, in percent. Always <= 0.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Total return divided by the absolute max drawdown.
	RecoveryFactor float64 `yaml:"recovery_factor" json:"recovery_factor"`
	// Count of closed round-trips.
	TotalTrades int `yaml:"total_trades" json:"total_trades"`
	// Count of closed round-trips with positive pnl.
	WinningTrades int `yaml:"winning_trades" json:"winning_trades"`
	// Count of closed round-trips with negative pnl.
	LosingTrades int `yaml:"losing_trades" json:"losing_trades"`
	// Sum of positive round-trip pnl.
	GrossProfit float64 `yaml:"gross_profit" json:"gross_profit"`
	// Sum of negative round-trip pnl, as a positive number.
	GrossLoss float64 `yaml:"gross_loss" json:"gross_loss"`
	// Average holding time of closed round-trips.
	AvgTradeDuration time.Duration `yaml:"avg_trade_duration" json:"avg_trade_duration"`
	// Average holding time of closed round-trips in days.
	AvgTradeDurationDays float64 `yaml:"avg_trade_duration_days" json:"avg_trade_duration_days"`
	// Equity at the last bar, open positions marked to market.
	FinalEquity float64 `yaml:"final_equity" json:"final_equity"`
	// Return in percent of holding from the first to the last bar.
	BuyAndHoldReturn float64 `yaml:"buy_and_hold_return" json:"buy_and_hold_return"`
	// Number of signals emitted by the detector.
	SignalCount int `yaml:"signal_count" json:"signal_count"`
}

type WeekdayReturn struct {
	Weekday time.Weekday `yaml:"weekday" json:"weekday"`
	// Sum of the per-bar equity returns, in percent, of bars falling on this weekday.
	ReturnPct float64 `yaml:"return_pct" json:"return_pct"`
}

type MonthlyPnL struct {
	Year  int        `yaml:"year" json:"year"`
	Month time.Month `yaml:"month" json:"month"`
	// Equity change in percent from the previous month's close to this month's close.
	PnLPct float64 `yaml:"pnl_pct" json:"pnl_pct"`
}

// BacktestResult is the complete output of one run. It is built once and owned by the caller.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp      time.Time       `yaml:"timestamp" json:"timestamp"`
	Symbol         string          `yaml:"symbol" json:"symbol"`
	Timeframe      Timeframe       `yaml:"timeframe" json:"timeframe"`
	StartDate      time.Time       `yaml:"start_date" json:"start_date"`
	EndDate        time.Time       `yaml:"end_date" json:"end_date"`
	InitialCapital float64         `yaml:"initial_capital" json:"initial_capital"`
	Metrics        Metrics         `yaml:"metrics" json:"metrics"`
	WeekdayReturns []WeekdayReturn `yaml:"weekday_returns" json:"weekday_returns"`
	MonthlyPnL     []MonthlyPnL    `yaml:"monthly_pnl" json:"monthly_pnl"`
	Series         Series          `yaml:"-" json:"series"`
	Signals        []Signal        `yaml:"-" json:"signals"`
	EquityCurve    []EquityPoint   `yaml:"-" json:"equity_curve"`
	Trades         []RoundTrip     `yaml:"-" json:"trades"`
}

// BacktestStats is the summary of a run written to disk, without the per-bar curves.
type BacktestStats struct {
	ID             string          `yaml:"id"`
	Timestamp      time.Time       `yaml:"timestamp"`
	Symbol         string          `yaml:"symbol"`
	Timeframe      Timeframe       `yaml:"timeframe"`
	StartDate      string          `yaml:"start_date"`
	EndDate        string          `yaml:"end_date"`
	InitialCapital float64         `yaml:"initial_capital"`
	Bars           int             `yaml:"bars"`
	Metrics        Metrics         `yaml:"metrics"`
	WeekdayReturns []WeekdayReturn `yaml:"weekday_returns"`
	MonthlyPnL     []MonthlyPnL    `yaml:"monthly_pnl"`
}

// Stats returns the summary of the result.
func (r *BacktestResult) Stats() BacktestStats {
	return BacktestStats{
		ID:             r.ID,
		Timestamp:      r.Timestamp,
		Symbol:         r.Symbol,
		Timeframe:      r.Timeframe,
		StartDate:      r.StartDate.Format(time.DateOnly),
		EndDate:        r.EndDate.Format(time.DateOnly),
		InitialCapital: r.InitialCapital,
		Bars:           len(r.Series),
		Metrics:        r.Metrics,
		WeekdayReturns: r.WeekdayReturns,
		MonthlyPnL:     r.MonthlyPnL,
	}
}

func WriteBacktestStats(path string, stats []BacktestStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest stats to file: %w", err)
	}

	return nil
}
