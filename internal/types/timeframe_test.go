package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeframe(t *testing.T) {
	t.Run("documented timeframes are valid", func(t *testing.T) {
		for _, tf := range AllTimeframes {
			assert.True(t, tf.Valid(), string(tf))
			assert.Positive(t, tf.Duration(), string(tf))
		}
	})

	t.Run("unknown timeframe", func(t *testing.T) {
		tf := Timeframe("2D")
		assert.False(t, tf.Valid())
		assert.Equal(t, time.Duration(0), tf.Duration())
		assert.Equal(t, "2D", tf.Label())
	})

	t.Run("labels", func(t *testing.T) {
		assert.Equal(t, "15 Minutes", TimeframeFifteenMinutes.Label())
		assert.Equal(t, "1 Week", TimeframeOneWeek.Label())
		assert.Equal(t, 4*time.Hour, TimeframeFourHours.Duration())
	})
}
