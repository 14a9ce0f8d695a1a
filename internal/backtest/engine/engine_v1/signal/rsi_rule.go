package signal

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// RSIRule is a mean-reversion rule on RSI threshold crossings.
// A bounce above the oversold level buys; a push above the overbought level sells.
type RSIRule struct {
	oversold   float64
	overbought float64
}

// NewRSIRule creates the rule. The conventional thresholds are 30 and 70.
func NewRSIRule(oversold float64, overbought float64) (*RSIRule, error) {
	if oversold < 0 || overbought > 100 || oversold >= overbought {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"rsi thresholds must satisfy 0 <= oversold < overbought <= 100, got %v and %v", oversold, overbought)
	}

	return &RSIRule{
		oversold:   oversold,
		overbought: overbought,
	}, nil
}

// Name implements Rule.
func (r *RSIRule) Name() types.RuleType {
	return types.RuleTypeRSI
}

// Evaluate implements Rule. The buy check wins when both crossings happen on the same bar.
func (r *RSIRule) Evaluate(prev types.Bar, current types.Bar) optional.Option[types.Signal] {
	if prev.RSI.IsNone() || current.RSI.IsNone() {
		return optional.None[types.Signal]()
	}

	prevRSI := prev.RSI.Unwrap()
	currentRSI := current.RSI.Unwrap()

	if prevRSI <= r.oversold && currentRSI > r.oversold {
		return newSignal(types.RuleTypeRSI, types.SignalTypeBuy, current, fmt.Sprintf("RSI oversold bounce: %.1f", currentRSI))
	} else if prevRSI <= r.overbought && currentRSI > r.overbought {
		return newSignal(types.RuleTypeRSI, types.SignalTypeSell, current, fmt.Sprintf("RSI overbought: %.1f", currentRSI))
	}

	return optional.None[types.Signal]()
}
