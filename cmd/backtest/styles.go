package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

var (
	TitleStyle  = lipgloss.NewStyle().Bold(true)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)
	GainStyle   = CellStyle.Foreground(lipgloss.Color("2"))
	LossStyle   = CellStyle.Foreground(lipgloss.Color("1"))
)

var summaryHeaders = []string{"Symbol", "Bars", "Signals", "Trades", "Win %", "Profit F.", "Max DD %", "Return %", "B&H %", "Final Equity"}

// returnColumn is the index of the Return % column.
const returnColumn = 7

func summaryRows(results []*types.BacktestResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		m := result.Metrics
		rows = append(rows, []string{
			result.Symbol,
			fmt.Sprintf("%d", len(result.Series)),
			fmt.Sprintf("%d", m.SignalCount),
			fmt.Sprintf("%d", m.TotalTrades),
			fmt.Sprintf("%.2f", m.WinRate),
			fmt.Sprintf("%.2f", m.ProfitFactor),
			fmt.Sprintf("%.2f", m.MaxDrawdown),
			fmt.Sprintf("%.2f", m.TotalReturn),
			fmt.Sprintf("%.2f", m.BuyAndHoldReturn),
			fmt.Sprintf("%.2f", m.FinalEquity),
		})
	}

	return rows
}

func renderSummary(results []*types.BacktestResult) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(summaryHeaders...).
		Rows(summaryRows(results)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}

			if col == returnColumn && row >= 0 && row < len(results) {
				if results[row].Metrics.TotalReturn > 0 {
					return GainStyle
				}

				if results[row].Metrics.TotalReturn < 0 {
					return LossStyle
				}
			}

			return CellStyle
		})

	return lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render("Backtest summary"), t.String())
}
