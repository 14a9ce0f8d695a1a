package signal

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// DefaultWarmUp is the first bar index the detector evaluates.
const DefaultWarmUp = 20

// Detector scans a series with an ordered list of rules. It keeps no state between calls
// apart from what its rules hold.
type Detector struct {
	warmUp int
	rules  []Rule
}

// NewDetector creates a detector. A warmUp below 1 is raised to 1 since bar 0 has no previous bar.
func NewDetector(warmUp int, rules ...Rule) *Detector {
	return &Detector{
		warmUp: max(warmUp, 1),
		rules:  rules,
	}
}

// Detect evaluates bars warmUp through len(series)-2 against their previous bar. Signals come
// out in scan order, and rule order for the same bar. Short or empty series yield no signals.
func (d *Detector) Detect(series types.Series) []types.Signal {
	signals := []types.Signal{}

	for i := d.warmUp; i < len(series)-1; i++ {
		prev := series[i-1]
		current := series[i]

		for _, rule := range d.rules {
			if signal := rule.Evaluate(prev, current); signal.IsSome() {
				signals = append(signals, signal.Unwrap())
			}
		}
	}

	return signals
}

// Rules returns the rules in evaluation order.
func (d *Detector) Rules() []Rule {
	return d.rules
}
