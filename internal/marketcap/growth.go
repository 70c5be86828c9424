package marketcap

import (
	"math"

	"github.com/wonny/ndxcap/internal/contracts"
)

// GrowthLookback is the trailing window length in trading periods.
// A period is one observation in the ticker's own series; calendar gaps
// do not count.
const GrowthLookback = 63

// GrowthCalculator computes trailing percentage change over a cap series
type GrowthCalculator struct {
	lookback int
}

// NewGrowthCalculator creates a calculator; lookback <= 0 selects the default
func NewGrowthCalculator(lookback int) *GrowthCalculator {
	if lookback <= 0 {
		lookback = GrowthLookback
	}
	return &GrowthCalculator{lookback: lookback}
}

// Compute returns one growth value per observation, aligned to the series:
// growth[i] = series[i] / series[i-lookback] - 1, or 0 when there are fewer
// than lookback prior observations or the denominator is zero.
// Full precision; rounding happens at record creation.
func (g *GrowthCalculator) Compute(series contracts.Series) []float64 {
	growth := make([]float64, len(series))

	for i := range series {
		if i < g.lookback {
			continue // insufficient history, growth stays 0
		}
		base := series[i-g.lookback].Close
		if base == 0 {
			continue
		}
		growth[i] = series[i].Close/base - 1
	}

	return growth
}

// Round4 rounds to the 4 decimal places used in the persisted dataset
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
