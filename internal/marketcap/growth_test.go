package marketcap

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ndxcap/internal/contracts"
)

// seriesOf builds a series with one observation per day and the given values
func seriesOf(values ...float64) contracts.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(contracts.Series, len(values))
	for i, v := range values {
		s[i] = contracts.PricePoint{Date: start.AddDate(0, 0, i), Close: v}
	}
	return s
}

func TestGrowthCalculator_InsufficientHistoryIsZero(t *testing.T) {
	calc := NewGrowthCalculator(0) // default 63

	// 64 observations: only the last one has a full lookback window
	values := make([]float64, 64)
	for i := range values {
		values[i] = 100 + float64(i)
	}

	growth := calc.Compute(seriesOf(values...))
	require.Len(t, growth, 64)

	for i := 0; i < 63; i++ {
		assert.Zerof(t, growth[i], "observation %d has fewer than 63 prior periods", i)
	}
	assert.InDelta(t, values[63]/values[0]-1, growth[63], 1e-12)
}

func TestGrowthCalculator_Compute(t *testing.T) {
	tests := []struct {
		name     string
		lookback int
		series   contracts.Series
		want     []float64
	}{
		{
			name:     "empty series",
			lookback: 3,
			series:   contracts.Series{},
			want:     []float64{},
		},
		{
			name:     "simple trailing change",
			lookback: 2,
			series:   seriesOf(100, 110, 120, 121),
			want:     []float64{0, 0, 0.2, 0.1},
		},
		{
			name:     "zero denominator stays zero",
			lookback: 2,
			series:   seriesOf(0, 100, 120, 121),
			want:     []float64{0, 0, 0, 0.21},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGrowthCalculator(tt.lookback).Compute(tt.series)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDeltaf(t, tt.want[i], got[i], 1e-12, "growth[%d]", i)
			}
		})
	}
}

func TestGrowthCalculator_GapsDoNotCountAsPeriods(t *testing.T) {
	// Observations a week apart: the lookback counts observations in the
	// ticker's own sequence, not calendar days.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := contracts.Series{
		{Date: start, Close: 100},
		{Date: start.AddDate(0, 0, 7), Close: 110},
		{Date: start.AddDate(0, 0, 14), Close: 121},
	}

	growth := NewGrowthCalculator(2).Compute(series)
	require.Len(t, growth, 3)
	assert.Zero(t, growth[0])
	assert.Zero(t, growth[1])
	assert.InDelta(t, 0.21, growth[2], 1e-12)
}

func TestRound4(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.123449, 0.1234},
		{0.123456, 0.1235},
		{-0.05678, -0.0568},
		{0, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.in), func(t *testing.T) {
			assert.InDelta(t, tt.want, Round4(tt.in), 1e-12)
		})
	}
}
