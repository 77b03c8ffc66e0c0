package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturnsFromValues(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{
			name:   "simple growth",
			values: []float64{100, 110, 99},
			want:   []float64{0.1, -0.1},
		},
		{
			name:   "single value",
			values: []float64{100},
			want:   []float64{},
		},
		{
			name:   "non-positive base skipped",
			values: []float64{0, 100, 110},
			want:   []float64{0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReturnsFromValues(tt.values)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestMeanAndStdDev(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 3.0, Mean(data), 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), StdDev(data), 1e-12)
	assert.InDelta(t, 2.5, Variance(data), 1e-12)

	assert.Zero(t, Mean(nil))
	assert.Zero(t, StdDev([]float64{1}))
}

func TestSharpeAndSortino(t *testing.T) {
	returns := []float64{0.01, 0.02, -0.01, 0.015, -0.005}

	sharpe := SharpeRatio(returns)
	assert.InDelta(t, Mean(returns)/StdDev(returns), sharpe, 1e-12)

	sortino := SortinoRatio(returns)
	downside := []float64{-0.01, -0.005}
	assert.InDelta(t, Mean(returns)/StdDev(downside), sortino, 1e-12)

	// Constant series has zero volatility; ratios degrade to zero.
	assert.Zero(t, SharpeRatio([]float64{0.01, 0.01, 0.01}))
	assert.Zero(t, SortinoRatio([]float64{0.01, 0.01, 0.01}))
}

func TestMaxDrawdown(t *testing.T) {
	// 100 -> 110 -> 88 -> 96.8: peak 110, trough 88, drawdown -20%.
	returns := []float64{0.1, -0.2, 0.1}
	assert.InDelta(t, -0.2, MaxDrawdown(returns), 1e-12)

	// Monotonic growth never draws down.
	assert.Zero(t, MaxDrawdown([]float64{0.01, 0.02, 0.03}))
	assert.Zero(t, MaxDrawdown(nil))
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.02, -0.02}
	assert.InDelta(t, StdDev(returns)*math.Sqrt(252), AnnualizedVolatility(returns), 1e-12)
}

func TestSkewnessAndKurtosis(t *testing.T) {
	symmetric := []float64{-0.02, -0.01, 0, 0.01, 0.02}
	assert.InDelta(t, 0, Skewness(symmetric), 1e-9)

	assert.Zero(t, Skewness([]float64{1, 2}))
	assert.Zero(t, Kurtosis([]float64{1, 2, 3}))
}

func TestTestMeanDifference(t *testing.T) {
	t.Run("identical series are not significant", func(t *testing.T) {
		returns := []float64{0.01, 0.02, -0.01, 0.005}
		result := TestMeanDifference(returns, returns, 0.05)

		assert.InDelta(t, 0, result.Difference, 1e-12)
		assert.InDelta(t, 0, result.TStatistic, 1e-12)
		assert.False(t, result.Significant)
	})

	t.Run("clearly different means are significant", func(t *testing.T) {
		high := make([]float64, 50)
		low := make([]float64, 50)
		for i := range high {
			high[i] = 0.02 + 0.0001*float64(i%5)
			low[i] = -0.02 + 0.0001*float64(i%5)
		}

		result := TestMeanDifference(high, low, 0.05)

		assert.Positive(t, result.TStatistic)
		assert.Less(t, result.PValue, 0.05)
		assert.True(t, result.Significant)
	})

	t.Run("too few observations", func(t *testing.T) {
		result := TestMeanDifference([]float64{0.01}, []float64{0.02}, 0.05)
		assert.False(t, result.Significant)
		assert.Equal(t, 1.0, result.PValue)
	})
}
