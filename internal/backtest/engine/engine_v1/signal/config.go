package signal

import (
	"math/rand"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// DetectorConfig configures the rules and warm-up of a detector.
type DetectorConfig struct {
	// WarmUp is the first bar index evaluated
	WarmUp int `yaml:"warm_up" json:"warm_up" jsonschema:"title=Warm Up,description=First bar index the detector evaluates,default=20" validate:"gte=1"`
	// RSIOversold is the RSI level a bounce must cross upwards to buy
	RSIOversold float64 `yaml:"rsi_oversold" json:"rsi_oversold" jsonschema:"title=RSI Oversold,default=30" validate:"gte=0,ltfield=RSIOverbought"`
	// RSIOverbought is the RSI level a push must cross upwards to sell
	RSIOverbought float64 `yaml:"rsi_overbought" json:"rsi_overbought" jsonschema:"title=RSI Overbought,default=70" validate:"lte=100"`
	// MACDGateProbability is the per-bar chance the MACD cross rule is evaluated. 1 evaluates every bar.
	MACDGateProbability float64 `yaml:"macd_gate_probability" json:"macd_gate_probability" jsonschema:"title=MACD Gate Probability,description=Per-bar probability that the MACD cross rule is evaluated,minimum=0,maximum=1,default=1" validate:"gte=0,lte=1"`
	// Rules lists the enabled rules in evaluation order
	Rules []types.RuleType `yaml:"rules" json:"rules" jsonschema:"title=Rules,description=Enabled rules in evaluation order" validate:"dive,oneof=rsi macd_cross"`
}

// DefaultDetectorConfig returns the deterministic detector: both rules, warm-up 20, no gate.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		WarmUp:              DefaultWarmUp,
		RSIOversold:         30,
		RSIOverbought:       70,
		MACDGateProbability: 1,
		Rules:               []types.RuleType{types.RuleTypeRSI, types.RuleTypeMACDCross},
	}
}

// ReferenceDetectorConfig returns the detector with the 5% MACD gate.
func ReferenceDetectorConfig() DetectorConfig {
	config := DefaultDetectorConfig()
	config.MACDGateProbability = 0.05

	return config
}

// NewRuleRegistryFromConfig registers the rules named by config.
// rng is only used by a gated MACD cross rule.
func NewRuleRegistryFromConfig(config DetectorConfig, rng *rand.Rand) (RuleRegistry, error) {
	registry := NewRuleRegistry()

	for _, name := range config.Rules {
		rule, err := newRule(name, config, rng)
		if err != nil {
			return nil, err
		}

		if err := registry.RegisterRule(rule); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// NewDetectorFromConfig builds a detector with the rules named by config, in config order.
func NewDetectorFromConfig(config DetectorConfig, rng *rand.Rand) (*Detector, error) {
	registry, err := NewRuleRegistryFromConfig(config, rng)
	if err != nil {
		return nil, err
	}

	names := registry.ListRules()
	rules := make([]Rule, 0, len(names))

	for _, name := range names {
		rule, err := registry.GetRule(name)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return NewDetector(config.WarmUp, rules...), nil
}

func newRule(name types.RuleType, config DetectorConfig, rng *rand.Rand) (Rule, error) {
	switch name {
	case types.RuleTypeRSI:
		return NewRSIRule(config.RSIOversold, config.RSIOverbought)
	case types.RuleTypeMACDCross:
		return NewMACDCrossRule(config.MACDGateProbability, rng)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown rule %s", name)
	}
}
