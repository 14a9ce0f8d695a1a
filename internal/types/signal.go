package types

import "time"

type SignalType string

const (
	// SignalTypeBuy opens a long position when flat
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell closes the long position when long
	SignalTypeSell SignalType = "sell"
)

type RuleType string

const (
	RuleTypeRSI       RuleType = "rsi"
	RuleTypeMACDCross RuleType = "macd_cross"
)

// AllRuleTypes lists every rule the detector knows how to build.
var AllRuleTypes = []any{string(RuleTypeRSI), string(RuleTypeMACDCross)}

type Signal struct {
	// Date is the date of the bar that triggered the signal
	Date time.Time `json:"date" yaml:"date"`
	// Type is the type of the signal
	Type SignalType `json:"type" yaml:"type"`
	// Price is copied from the triggering bar
	Price float64 `json:"price" yaml:"price"`
	// Reason is a human readable provenance string, e.g. "RSI oversold bounce: 35.0"
	Reason string `json:"reason" yaml:"reason"`
	// Rule is the rule that emitted the signal
	Rule RuleType `json:"rule" yaml:"rule"`
}
