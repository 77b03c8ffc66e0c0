package dto

import (
	"time"

	"etf-momentum/pkg/formulas"
)

type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// TransactionRecord is one executed trade. Records are append-only; nothing
// in the core mutates or removes them after the fact.
type TransactionRecord struct {
	Date            time.Time   `json:"date"`
	Action          TradeAction `json:"action"`
	Symbol          string      `json:"symbol"`
	Shares          int64       `json:"shares"`
	Price           float64     `json:"price"`
	GrossAmount     float64     `json:"gross_amount"`
	TransactionCost float64     `json:"transaction_cost"`
	NetAmount       float64     `json:"net_amount"`
}

// TransactionSummary aggregates the transaction log of one run.
type TransactionSummary struct {
	TotalTransactions int     `json:"total_transactions"`
	BuyTransactions   int     `json:"buy_transactions"`
	SellTransactions  int     `json:"sell_transactions"`
	TotalCosts        float64 `json:"total_transaction_costs"`
	AverageCost       float64 `json:"average_cost_per_transaction"`
}

// PositionSnapshot is a read-only view of the ledger at a point in time.
// An empty symbol means all-cash.
type PositionSnapshot struct {
	Symbol         string  `json:"symbol"`
	Shares         int64   `json:"shares"`
	Cash           float64 `json:"cash"`
	PortfolioValue float64 `json:"portfolio_value"`
}

// RebalanceRecord is the decision trail entry for one rebalance date. It is
// appended whether or not the rebalance succeeded; skipped dates (empty
// ranking) produce no record at all.
type RebalanceRecord struct {
	Date                 time.Time     `json:"date"`
	SelectedSymbol       string        `json:"selected_symbol"`
	MomentumScore        float64       `json:"momentum_score"`
	PortfolioValueBefore float64       `json:"portfolio_value_before"`
	PortfolioValueAfter  *float64      `json:"portfolio_value_after,omitempty"`
	Succeeded            bool          `json:"rebalance_succeeded"`
	FailureReason        string        `json:"failure_reason,omitempty"`
	Rankings             RankingResult `json:"rankings"`
}

// BacktestResult is the summary assembled when a simulation finalizes.
type BacktestResult struct {
	BacktestType       string              `json:"backtest_type"`
	StartDate          time.Time           `json:"start_date"`
	EndDate            time.Time           `json:"end_date"`
	InitialCapital     float64             `json:"initial_capital"`
	FinalValue         float64             `json:"final_portfolio_value"`
	TotalReturnPct     float64             `json:"total_return_pct"`
	RebalanceCount     int                 `json:"rebalance_count"`
	TransactionSummary TransactionSummary  `json:"transaction_summary"`
	FinalPosition      PositionSnapshot    `json:"final_position"`
	RebalanceHistory   []RebalanceRecord   `json:"rebalance_history"`
	Transactions       []TransactionRecord `json:"transactions"`
	DailyReturns       []float64           `json:"daily_returns,omitempty"`
}

// OOSBacktestResult extends BacktestResult with the frozen parameters and
// the per-run parameter validation audit trail.
type OOSBacktestResult struct {
	BacktestResult
	FrozenParams     StrategyParams   `json:"frozen_parameters"`
	ValidationLog    []LockValidation `json:"parameter_validation_log"`
	ValidationPassed bool             `json:"parameter_validation_passed"`
}

// PeriodMetrics are the per-period performance statistics the comparison
// collaborator consumes.
type PeriodMetrics struct {
	PeriodName           string  `json:"period_name"`
	Observations         int     `json:"total_observations"`
	TotalReturnPct       float64 `json:"total_return_pct"`
	AnnualizedReturn     float64 `json:"annualized_return"`
	MeanReturn           float64 `json:"mean_return"`
	Volatility           float64 `json:"volatility"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	AnnualizedSharpe     float64 `json:"annualized_sharpe"`
	SortinoRatio         float64 `json:"sortino_ratio"`
	MaxDrawdownPct       float64 `json:"max_drawdown_pct"`
	WinRate              float64 `json:"win_rate"`
	BestReturn           float64 `json:"best_return"`
	WorstReturn          float64 `json:"worst_return"`
	Skewness             float64 `json:"skewness"`
	Kurtosis             float64 `json:"kurtosis"`
}

// MetricDelta holds one metric side by side for both periods.
type MetricDelta struct {
	InSample    float64 `json:"in_sample"`
	OutOfSample float64 `json:"out_of_sample"`
	Difference  float64 `json:"difference"`
}

// DegradationAnalysis scores how much the strategy decayed out of sample.
type DegradationAnalysis struct {
	ReturnDegradation  float64 `json:"return_degradation"`
	SharpeDegradation  float64 `json:"sharpe_degradation"`
	DrawdownIncrease   float64 `json:"drawdown_increase"`
	VolatilityIncrease float64 `json:"volatility_increase"`
	OverallScore       float64 `json:"overall_degradation_score"`
}

// ComparisonReport is the full in-sample vs out-of-sample comparison.
type ComparisonReport struct {
	ComparedAt        time.Time                   `json:"compared_at"`
	InSample          PeriodMetrics               `json:"in_sample"`
	OutOfSample       PeriodMetrics               `json:"out_of_sample"`
	Metrics           map[string]MetricDelta      `json:"performance_comparison"`
	MeanDifference    formulas.MeanDifferenceTest `json:"mean_difference_test"`
	Degradation       DegradationAnalysis         `json:"degradation_analysis"`
	ConsistencyRating string                      `json:"consistency_assessment"`
}

// BacktestRequest triggers an in-sample simulation over an explicit window.
type BacktestRequest struct {
	Symbols            []string  `json:"symbols"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required"`
	InitialCapital     float64   `json:"initial_capital"`
	TransactionCostPct float64   `json:"transaction_cost_pct"`
	Periods            []int     `json:"periods"`
	Weights            []float64 `json:"weights"`
}

// OOSAnalysisRequest triggers the full split → freeze → OOS pipeline.
// SplitDate is optional; when zero the partitioner recommends one from
// OOSFraction.
type OOSAnalysisRequest struct {
	Symbols        []string  `json:"symbols"`
	StartDate      time.Time `json:"start_date" validate:"required"`
	EndDate        time.Time `json:"end_date" validate:"required"`
	SplitDate      time.Time `json:"split_date"`
	OOSFraction    float64   `json:"oos_fraction"`
	InitialCapital float64   `json:"initial_capital"`
}

// OOSAnalysisResult bundles the complete pipeline outcome.
type OOSAnalysisResult struct {
	AnalysisDate     time.Time          `json:"analysis_date"`
	SplitDate        time.Time          `json:"split_date"`
	SplitWarnings    []string           `json:"split_warnings,omitempty"`
	InSample         *BacktestResult    `json:"in_sample_results"`
	OutOfSample      *OOSBacktestResult `json:"out_of_sample_results"`
	FrozenParams     StrategyParams     `json:"frozen_parameters"`
	ParamFingerprint string             `json:"parameter_fingerprint"`
	Comparison       *ComparisonReport  `json:"performance_comparison,omitempty"`
	Rigor            RigorSummary       `json:"validation_results"`
}

// RigorSummary reports whether the scientific controls held for a run.
type RigorSummary struct {
	ParametersFrozen        bool    `json:"parameters_frozen"`
	NoDataLeakage           bool    `json:"no_data_leakage"`
	NoParameterOptimization bool    `json:"no_parameter_optimization"`
	TemporalSeparation      bool    `json:"temporal_separation"`
	ValidationCount         int     `json:"validation_count"`
	FailedValidations       int     `json:"failed_validations"`
	FailureRate             float64 `json:"failure_rate"`
}
