package types

type IndicatorType string

const (
	IndicatorTypeRSI  IndicatorType = "rsi"
	IndicatorTypeMACD IndicatorType = "macd"
	IndicatorTypeEMA  IndicatorType = "ema"
)

// IndicatorMode selects how a series gets its RSI and MACD columns.
type IndicatorMode string

const (
	// IndicatorModeSampled draws indicator values independently of price.
	IndicatorModeSampled IndicatorMode = "sampled"
	// IndicatorModeComputed derives indicator values from the price column.
	IndicatorModeComputed IndicatorMode = "computed"
)

var AllIndicatorModes = []any{string(IndicatorModeSampled), string(IndicatorModeComputed)}
