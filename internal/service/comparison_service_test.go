package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-momentum/internal/dto"
)

func TestPeriodMetrics(t *testing.T) {
	svc := NewComparisonService()

	result := &dto.BacktestResult{
		TotalReturnPct: 10,
		DailyReturns:   []float64{0.01, -0.005, 0.02, 0.0, -0.01, 0.015},
	}

	metrics := svc.PeriodMetrics("in_sample", result)

	assert.Equal(t, "in_sample", metrics.PeriodName)
	assert.Equal(t, 6, metrics.Observations)
	assert.Equal(t, 10.0, metrics.TotalReturnPct)
	assert.InDelta(t, 0.02, metrics.BestReturn, 1e-12)
	assert.InDelta(t, -0.01, metrics.WorstReturn, 1e-12)
	assert.InDelta(t, 50.0, metrics.WinRate, 1e-9)
	assert.Positive(t, metrics.AnnualizedVolatility)
	assert.Positive(t, metrics.AnnualizedReturn)
	assert.Negative(t, metrics.MaxDrawdownPct)
}

func TestPeriodMetricsEmptyReturns(t *testing.T) {
	svc := NewComparisonService()

	metrics := svc.PeriodMetrics("out_of_sample", &dto.BacktestResult{TotalReturnPct: 5})

	assert.Zero(t, metrics.Observations)
	assert.Zero(t, metrics.AnnualizedSharpe)
	assert.Equal(t, 5.0, metrics.TotalReturnPct)
}

func TestCompareBuildsFullReport(t *testing.T) {
	svc := NewComparisonService()

	inSample := &dto.BacktestResult{
		TotalReturnPct: 20,
		DailyReturns:   repeatPattern([]float64{0.012, -0.004, 0.008}, 40),
	}
	outOfSample := &dto.BacktestResult{
		TotalReturnPct: 8,
		DailyReturns:   repeatPattern([]float64{0.006, -0.006, 0.004}, 40),
	}

	report := svc.Compare(inSample, outOfSample)

	require.NotNil(t, report)
	assert.Equal(t, "in_sample", report.InSample.PeriodName)
	assert.Equal(t, "out_of_sample", report.OutOfSample.PeriodName)

	delta, ok := report.Metrics["total_return_pct"]
	require.True(t, ok)
	assert.Equal(t, 20.0, delta.InSample)
	assert.Equal(t, 8.0, delta.OutOfSample)
	assert.InDelta(t, -12.0, delta.Difference, 1e-9)

	assert.Positive(t, report.Degradation.ReturnDegradation)
	assert.Contains(t, []string{"very_high", "high", "moderate", "low"}, report.ConsistencyRating)
	assert.Equal(t, 0.05, report.MeanDifference.SignificantAt)
	assert.False(t, report.ComparedAt.IsZero())
}

func TestConsistencyRating(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{score: -3, want: "very_high"},
		{score: 1.9, want: "very_high"},
		{score: 4.9, want: "high"},
		{score: 9.9, want: "moderate"},
		{score: 25, want: "low"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, consistencyRating(tt.score))
	}
}

func repeatPattern(pattern []float64, times int) []float64 {
	out := make([]float64, 0, len(pattern)*times)
	for i := 0; i < times; i++ {
		out = append(out, pattern...)
	}
	return out
}
