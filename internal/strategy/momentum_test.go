package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-momentum/internal/dto"
)

func makeSeries(t *testing.T, startDate string, closes ...float64) dto.PriceSeries {
	t.Helper()
	start, err := time.Parse("2006-01-02", startDate)
	require.NoError(t, err)

	series := make(dto.PriceSeries, 0, len(closes))
	for i, close := range closes {
		series = append(series, dto.Candle{
			Date:   start.AddDate(0, 0, i),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: 1000,
		})
	}
	return series
}

func TestNewMomentumScorer(t *testing.T) {
	tests := []struct {
		name    string
		periods []int
		weights []float64
		wantErr bool
	}{
		{
			name:    "valid configuration",
			periods: []int{30, 90, 180},
			weights: []float64{0.5, 0.3, 0.2},
		},
		{
			name:    "weights within tolerance",
			periods: []int{1, 2},
			weights: []float64{0.5, 0.4999999},
		},
		{
			name:    "no periods",
			periods: nil,
			weights: nil,
			wantErr: true,
		},
		{
			name:    "length mismatch",
			periods: []int{30, 90},
			weights: []float64{1.0},
			wantErr: true,
		},
		{
			name:    "weights do not sum to one",
			periods: []int{30, 90},
			weights: []float64{0.5, 0.3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMomentumScorer(tt.periods, tt.weights)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScoreInsufficientHistory(t *testing.T) {
	scorer, err := NewMomentumScorer([]int{5}, []float64{1.0})
	require.NoError(t, err)

	// 5 rows cannot support a 5-day lookback; it needs 6.
	series := makeSeries(t, "2024-01-01", 100, 101, 102, 103, 104)
	score := scorer.Score("SPY", series)

	assert.Nil(t, score.Score)
	assert.Nil(t, score.PeriodReturns[5])
	assert.Equal(t, 104.0, score.CurrentPrice)
}

func TestScorePartialHistoryYieldsNilScore(t *testing.T) {
	scorer, err := NewMomentumScorer([]int{2, 10}, []float64{0.5, 0.5})
	require.NoError(t, err)

	// Enough for the 2-day lookback, not for the 10-day one: the weighted
	// score must stay nil rather than renormalize over the available part.
	series := makeSeries(t, "2024-01-01", 100, 102, 104, 106)
	score := scorer.Score("QQQ", series)

	require.NotNil(t, score.PeriodReturns[2])
	assert.InDelta(t, 106.0/102.0-1, *score.PeriodReturns[2], 1e-12)
	assert.Nil(t, score.PeriodReturns[10])
	assert.Nil(t, score.Score)
}

func TestScoreWeightedAcrossPeriods(t *testing.T) {
	scorer, err := NewMomentumScorer([]int{1, 3}, []float64{0.6, 0.4})
	require.NoError(t, err)

	series := makeSeries(t, "2024-01-01", 100, 104, 102, 110)
	score := scorer.Score("IWM", series)

	require.NotNil(t, score.Score)
	want := 0.6*(110.0/102.0-1) + 0.4*(110.0/100.0-1)
	assert.InDelta(t, want, *score.Score, 1e-12)
}

func TestScoreAllRanking(t *testing.T) {
	scorer, err := NewMomentumScorer([]int{1}, []float64{1.0})
	require.NoError(t, err)

	histories := map[string]dto.PriceSeries{
		"AAA": makeSeries(t, "2024-01-01", 100, 110),
		"BBB": makeSeries(t, "2024-01-01", 100, 120),
		"CCC": makeSeries(t, "2024-01-01", 100, 105),
		"DDD": makeSeries(t, "2024-01-01", 100), // too short, dropped
	}

	ranking := scorer.ScoreAll(histories)

	require.Len(t, ranking, 3)
	assert.Equal(t, "BBB", ranking[0].Symbol)
	assert.Equal(t, "AAA", ranking[1].Symbol)
	assert.Equal(t, "CCC", ranking[2].Symbol)

	top, ok := ranking.Top()
	require.True(t, ok)
	assert.Equal(t, "BBB", top.Symbol)
	assert.InDelta(t, 0.20, top.Score, 1e-12)
}

func TestScoreAllTieBreaksBySymbol(t *testing.T) {
	scorer, err := NewMomentumScorer([]int{1}, []float64{1.0})
	require.NoError(t, err)

	histories := map[string]dto.PriceSeries{
		"ZZZ": makeSeries(t, "2024-01-01", 100, 110),
		"AAA": makeSeries(t, "2024-01-01", 200, 220),
	}

	ranking := scorer.ScoreAll(histories)

	require.Len(t, ranking, 2)
	assert.Equal(t, "AAA", ranking[0].Symbol)
	assert.Equal(t, "ZZZ", ranking[1].Symbol)
}

func TestScoreAllEmptyInput(t *testing.T) {
	scorer, err := NewMomentumScorer([]int{1}, []float64{1.0})
	require.NoError(t, err)

	ranking := scorer.ScoreAll(map[string]dto.PriceSeries{})
	assert.Empty(t, ranking)
	_, ok := ranking.Top()
	assert.False(t, ok)
}

func TestScoreIgnoresFutureRows(t *testing.T) {
	scorer, err := NewMomentumScorer([]int{2}, []float64{1.0})
	require.NoError(t, err)

	full := makeSeries(t, "2024-01-01", 100, 105, 110, 900, 1000)
	cutoff := full[2].Date

	truncated := full.UpTo(cutoff)
	require.Len(t, truncated, 3)

	fromTruncated := scorer.Score("SPY", truncated)
	fromManualSlice := scorer.Score("SPY", full[:3])

	require.NotNil(t, fromTruncated.Score)
	require.NotNil(t, fromManualSlice.Score)
	assert.Equal(t, *fromManualSlice.Score, *fromTruncated.Score)
	assert.Equal(t, fromManualSlice.CalculationDate, fromTruncated.CalculationDate)
	assert.InDelta(t, 110.0/100.0-1, *fromTruncated.Score, 1e-12)
}
