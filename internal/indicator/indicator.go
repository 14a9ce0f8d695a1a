// Package indicator computes technical indicators over a price column.
//
// Every function returns one value per input price. Values that cannot be computed yet
// (the warm-up window) are optional.None.
package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Compute returns one value per price, None during warm-up
	Compute(prices []float64) []optional.Option[float64]
}

func validatePeriod(name string, period int) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, period)
	}

	return nil
}

func noneSlice(n int) []optional.Option[float64] {
	values := make([]optional.Option[float64], n)
	for i := range values {
		values[i] = optional.None[float64]()
	}

	return values
}
