// Package signal turns a series into buy and sell signals.
//
// A Detector walks consecutive bar pairs after a warm-up offset and asks every Rule, in order,
// whether the pair triggers a signal. Rules are stateless except for an optional random gate.
package signal

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Rule evaluates one pair of consecutive bars.
type Rule interface {
	// Name returns the type of the rule
	Name() types.RuleType
	// Evaluate returns the signal triggered by the move from prev to current, if any.
	// The signal is dated and priced at current.
	Evaluate(prev types.Bar, current types.Bar) optional.Option[types.Signal]
}

func newSignal(rule types.RuleType, signalType types.SignalType, bar types.Bar, reason string) optional.Option[types.Signal] {
	return optional.Some(types.Signal{
		Date:   bar.Date,
		Type:   signalType,
		Price:  bar.Price,
		Reason: reason,
		Rule:   rule,
	})
}
