package dto

import "time"

// MomentumScore is the per-symbol outcome of one scoring pass. PeriodReturns
// maps each configured lookback (in trading days) to its return; a nil entry
// means the visible history was too short for that lookback. Score is nil
// whenever any period return is nil: partial momentum is never computed.
type MomentumScore struct {
	Symbol          string           `json:"symbol"`
	CalculationDate time.Time        `json:"calculation_date"`
	CurrentPrice    float64          `json:"current_price"`
	PeriodReturns   map[int]*float64 `json:"period_returns"`
	Score           *float64         `json:"momentum_score"`
}

// SymbolScore is one entry of a ranking.
type SymbolScore struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
}

// RankingResult is a descending-by-score ranking over symbols with a
// computable score. Ties break by ascending symbol name so rankings are
// deterministic regardless of map iteration order.
type RankingResult []SymbolScore

// Top returns the highest-ranked symbol, or false on an empty ranking.
func (r RankingResult) Top() (SymbolScore, bool) {
	if len(r) == 0 {
		return SymbolScore{}, false
	}
	return r[0], true
}
