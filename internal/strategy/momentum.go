package strategy

import (
	"fmt"
	"math"
	"sort"

	"etf-momentum/internal/dto"
)

const weightSumTolerance = 1e-6

// MomentumScorer converts price histories into weighted momentum scores.
// It is pure: the only state is the validated configuration, and every call
// recomputes from the series it is handed, so scores always reflect exactly
// the window visible to the caller.
type MomentumScorer struct {
	periods []int
	weights []float64
}

// NewMomentumScorer validates the lookback configuration once, up front.
// Periods and weights must be parallel and the weights must sum to 1.0.
func NewMomentumScorer(periods []int, weights []float64) (*MomentumScorer, error) {
	if len(periods) == 0 {
		return nil, fmt.Errorf("momentum scorer requires at least one lookback period")
	}
	if len(periods) != len(weights) {
		return nil, fmt.Errorf("periods and weights must have same length, got %d and %d", len(periods), len(weights))
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return nil, fmt.Errorf("weights must sum to 1.0, got %.6f", sum)
	}

	return &MomentumScorer{
		periods: append([]int(nil), periods...),
		weights: append([]float64(nil), weights...),
	}, nil
}

// Periods returns a copy of the configured lookbacks.
func (m *MomentumScorer) Periods() []int {
	return append([]int(nil), m.periods...)
}

// Weights returns a copy of the configured weights.
func (m *MomentumScorer) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}

// periodReturn computes the return over one lookback, nil when the series is
// shorter than period+1 rows or the historical close is not positive.
func (m *MomentumScorer) periodReturn(series dto.PriceSeries, period int) *float64 {
	if len(series) < period+1 {
		return nil
	}

	current := series[len(series)-1].Close
	past := series[len(series)-1-period].Close
	if past <= 0 {
		return nil
	}

	r := current/past - 1.0
	return &r
}

// Score computes the momentum score for a single symbol from the history it
// is given. The score is nil unless every configured period has a return.
func (m *MomentumScorer) Score(symbol string, series dto.PriceSeries) dto.MomentumScore {
	score := dto.MomentumScore{
		Symbol:        symbol,
		PeriodReturns: make(map[int]*float64, len(m.periods)),
	}
	if len(series) == 0 {
		return score
	}

	last := series[len(series)-1]
	score.CalculationDate = last.Date
	score.CurrentPrice = last.Close

	complete := true
	weighted := 0.0
	for i, period := range m.periods {
		r := m.periodReturn(series, period)
		score.PeriodReturns[period] = r
		if r == nil {
			complete = false
			continue
		}
		weighted += *r * m.weights[i]
	}

	if complete {
		score.Score = &weighted
	}
	return score
}

// ScoreAll scores every symbol and ranks the scorable ones descending.
// Symbols without a computable score are dropped; ties break by ascending
// symbol name. Empty input or all-nil scores yield an empty ranking.
func (m *MomentumScorer) ScoreAll(histories map[string]dto.PriceSeries) dto.RankingResult {
	ranking := make(dto.RankingResult, 0, len(histories))
	for symbol, series := range histories {
		s := m.Score(symbol, series)
		if s.Score == nil {
			continue
		}
		ranking = append(ranking, dto.SymbolScore{Symbol: symbol, Score: *s.Score})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Score != ranking[j].Score {
			return ranking[i].Score > ranking[j].Score
		}
		return ranking[i].Symbol < ranking[j].Symbol
	})

	return ranking
}
