package signal

import (
	"fmt"
	"math/rand"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// MACDCrossRule emits a signal when the MACD line crosses zero.
//
// With a gate probability below 1 the rule only looks at a bar when a uniform draw falls
// under the probability. The draw happens on every evaluated bar, before MACD presence is
// checked, so the random stream advances the same way regardless of the data.
type MACDCrossRule struct {
	gateProbability float64
	rng             *rand.Rand
}

// NewMACDCrossRule creates the rule. gateProbability 1 evaluates every bar and needs no rng.
func NewMACDCrossRule(gateProbability float64, rng *rand.Rand) (*MACDCrossRule, error) {
	if gateProbability < 0 || gateProbability > 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "macd gate probability must be within [0, 1], got %v", gateProbability)
	}

	if gateProbability < 1 && rng == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "a random source is required when the macd gate probability is below 1")
	}

	return &MACDCrossRule{
		gateProbability: gateProbability,
		rng:             rng,
	}, nil
}

// Name implements Rule.
func (r *MACDCrossRule) Name() types.RuleType {
	return types.RuleTypeMACDCross
}

// Evaluate implements Rule.
func (r *MACDCrossRule) Evaluate(prev types.Bar, current types.Bar) optional.Option[types.Signal] {
	if r.gateProbability < 1 && r.rng.Float64() >= r.gateProbability {
		return optional.None[types.Signal]()
	}

	if prev.MACD.IsNone() || current.MACD.IsNone() {
		return optional.None[types.Signal]()
	}

	prevMACD := prev.MACD.Unwrap()
	currentMACD := current.MACD.Unwrap()

	if prevMACD < 0 && currentMACD > 0 {
		return newSignal(types.RuleTypeMACDCross, types.SignalTypeBuy, current, fmt.Sprintf("MACD bullish cross: %.3f", currentMACD))
	} else if prevMACD > 0 && currentMACD < 0 {
		return newSignal(types.RuleTypeMACDCross, types.SignalTypeSell, current, fmt.Sprintf("MACD bearish cross: %.3f", currentMACD))
	}

	return optional.None[types.Signal]()
}
