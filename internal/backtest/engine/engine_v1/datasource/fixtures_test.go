package datasource

import (
	"path/filepath"
	"time"

	"github.com/stretchr/testify/require"
)

type fixtureT interface {
	require.TestingT
	TempDir() string
}

func float64Ptr(v float64) *float64 {
	return &v
}

// writeFixture writes records to a parquet file in a temporary directory and returns its path.
func writeFixture(t fixtureT, records []BarRecord) string {
	path := filepath.Join(t.TempDir(), "bars.parquet")
	require.NoError(t, WriteBarRecords(path, records))

	return path
}

// dailyRecords builds count consecutive daily records of symbol starting at start.
// withIndicators controls whether rsi and macd columns carry values.
func dailyRecords(symbol string, start time.Time, count int, withIndicators bool) []BarRecord {
	records := make([]BarRecord, 0, count)

	for i := 0; i < count; i++ {
		record := BarRecord{
			Symbol: symbol,
			Date:   start.AddDate(0, 0, i).UnixMilli(),
			Price:  100 + float64(i%7) - float64(i%3),
			Volume: int64(1_000_000 + i),
			RSI:    nil,
			MACD:   nil,
		}

		if withIndicators {
			record.RSI = float64Ptr(40 + float64(i%20))
			record.MACD = float64Ptr(float64(i%5) - 2)
		}

		records = append(records, record)
	}

	return records
}
