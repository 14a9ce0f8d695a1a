package datasource

import (
	"sort"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

type indicatorSet struct {
	rsi  indicator.Indicator
	macd indicator.Indicator
}

func newIndicatorSet(config IndicatorConfig) (*indicatorSet, error) {
	rsi, err := indicator.NewRSI(config.RSIPeriod)
	if err != nil {
		return nil, err
	}

	macd, err := indicator.NewMACD(config.MACDFastPeriod, config.MACDSlowPeriod)
	if err != nil {
		return nil, err
	}

	return &indicatorSet{
		rsi:  rsi,
		macd: macd,
	}, nil
}

// fill overwrites the RSI and/or MACD columns of series in place with values computed from its prices.
func (s *indicatorSet) fill(series types.Series, rsi bool, macd bool) {
	prices := series.Prices()

	if rsi {
		for i, v := range s.rsi.Compute(prices) {
			series[i].RSI = v
		}
	}

	if macd {
		for i, v := range s.macd.Compute(prices) {
			series[i].MACD = v
		}
	}
}

// fillMissingIndicators computes an indicator column only when no bar of the series carries it,
// so sources with stored indicator values keep them untouched.
func fillMissingIndicators(series types.Series, set *indicatorSet) {
	if len(series) == 0 || set == nil {
		return
	}

	set.fill(series, !hasAny(series, func(b types.Bar) optional.Option[float64] { return b.RSI }),
		!hasAny(series, func(b types.Bar) optional.Option[float64] { return b.MACD }))
}

func hasAny(series types.Series, column func(types.Bar) optional.Option[float64]) bool {
	for _, bar := range series {
		if column(bar).IsSome() {
			return true
		}
	}

	return false
}

// normalizeSeries sorts bars by date, keeps the first bar of every date and caps the length.
func normalizeSeries(series types.Series, maxBars int) types.Series {
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	result := make(types.Series, 0, len(series))
	for _, bar := range series {
		if len(result) > 0 && bar.Date.Equal(result[len(result)-1].Date) {
			continue
		}

		result = append(result, bar)
		if maxBars > 0 && len(result) == maxBars {
			break
		}
	}

	return result
}

func nopLogger() *logger.Logger {
	return logger.NewNopLogger()
}
