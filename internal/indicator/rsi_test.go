package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestNewRSI() {
	rsi, err := NewRSI(14)
	suite.Require().NoError(err)
	suite.Equal(14, rsi.period)
	suite.Equal(types.IndicatorTypeRSI, rsi.Name())
}

func (suite *RSITestSuite) TestNewRSIInvalidPeriod() {
	for _, period := range []int{0, -1} {
		_, err := NewRSI(period)
		suite.Error(err)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
	}
}

func (suite *RSITestSuite) TestWarmUpIsNone() {
	rsi, err := NewRSI(3)
	suite.Require().NoError(err)

	values := rsi.Compute([]float64{10, 11, 12, 13, 14})
	suite.Len(values, 5)

	for i := 0; i < 3; i++ {
		suite.True(values[i].IsNone(), "index %d should be None", i)
	}

	suite.True(values[3].IsSome())
	suite.True(values[4].IsSome())
}

func (suite *RSITestSuite) TestInsufficientData() {
	rsi, err := NewRSI(14)
	suite.Require().NoError(err)

	values := rsi.Compute([]float64{1, 2, 3})
	suite.Len(values, 3)

	for _, v := range values {
		suite.True(v.IsNone())
	}

	suite.Empty(rsi.Compute(nil))
}

func (suite *RSITestSuite) TestPerfectUptrend() {
	rsi, err := NewRSI(3)
	suite.Require().NoError(err)

	values := rsi.Compute([]float64{1, 2, 3, 4, 5, 6})
	for i := 3; i < 6; i++ {
		suite.Equal(100.0, values[i].Unwrap())
	}
}

func (suite *RSITestSuite) TestFlatPrices() {
	rsi, err := NewRSI(2)
	suite.Require().NoError(err)

	values := rsi.Compute([]float64{5, 5, 5, 5})
	suite.Equal(50.0, values[2].Unwrap())
	suite.Equal(50.0, values[3].Unwrap())
}

func (suite *RSITestSuite) TestWilderSmoothing() {
	rsi, err := NewRSI(2)
	suite.Require().NoError(err)

	// changes: +1, -1 -> avg gain 0.5, avg loss 0.5 -> 50
	// next change +2 -> avg gain 1.25, avg loss 0.25 -> rs 5 -> 83.33
	values := rsi.Compute([]float64{1, 2, 1, 3})
	suite.InDelta(50.0, values[2].Unwrap(), 1e-9)
	suite.InDelta(100-100.0/6, values[3].Unwrap(), 1e-9)
}

func (suite *RSITestSuite) TestRange() {
	rsi, err := NewRSI(14)
	suite.Require().NoError(err)

	prices := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64}
	for _, v := range rsi.Compute(prices) {
		if v.IsSome() {
			suite.GreaterOrEqual(v.Unwrap(), 0.0)
			suite.LessOrEqual(v.Unwrap(), 100.0)
		}
	}
}
