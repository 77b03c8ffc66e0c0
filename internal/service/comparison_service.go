package service

import (
	"math"
	"time"

	"etf-momentum/internal/dto"
	"etf-momentum/pkg/formulas"
)

// significanceLevel for the in-sample vs out-of-sample mean return test.
const significanceLevel = 0.05

type ComparisonService interface {
	Compare(inSample, outOfSample *dto.BacktestResult) *dto.ComparisonReport
	PeriodMetrics(name string, result *dto.BacktestResult) dto.PeriodMetrics
}

type comparisonService struct{}

func NewComparisonService() ComparisonService {
	return &comparisonService{}
}

// PeriodMetrics computes the performance statistics of one simulated period
// from its daily return series.
func (s *comparisonService) PeriodMetrics(name string, result *dto.BacktestResult) dto.PeriodMetrics {
	returns := result.DailyReturns

	metrics := dto.PeriodMetrics{
		PeriodName:     name,
		Observations:   len(returns),
		TotalReturnPct: result.TotalReturnPct,
	}
	if len(returns) == 0 {
		return metrics
	}

	metrics.MeanReturn = formulas.Mean(returns)
	metrics.Volatility = formulas.StdDev(returns)
	metrics.AnnualizedVolatility = formulas.AnnualizedVolatility(returns)
	metrics.AnnualizedSharpe = formulas.SharpeRatio(returns) * math.Sqrt(formulas.TradingDaysPerYear)
	metrics.SortinoRatio = formulas.SortinoRatio(returns)
	metrics.MaxDrawdownPct = formulas.MaxDrawdown(returns) * 100
	metrics.Skewness = formulas.Skewness(returns)
	metrics.Kurtosis = formulas.Kurtosis(returns)

	totalGrowth := 1 + result.TotalReturnPct/100
	if totalGrowth > 0 {
		metrics.AnnualizedReturn = (math.Pow(totalGrowth, formulas.TradingDaysPerYear/float64(len(returns))) - 1) * 100
	}

	wins := 0
	best, worst := returns[0], returns[0]
	for _, r := range returns {
		if r > 0 {
			wins++
		}
		if r > best {
			best = r
		}
		if r < worst {
			worst = r
		}
	}
	metrics.WinRate = float64(wins) / float64(len(returns)) * 100
	metrics.BestReturn = best
	metrics.WorstReturn = worst

	return metrics
}

// Compare builds the full side-by-side report of an in-sample baseline
// against its frozen-parameter out-of-sample run.
func (s *comparisonService) Compare(inSample, outOfSample *dto.BacktestResult) *dto.ComparisonReport {
	isMetrics := s.PeriodMetrics("in_sample", inSample)
	oosMetrics := s.PeriodMetrics("out_of_sample", outOfSample)

	delta := func(is, oos float64) dto.MetricDelta {
		return dto.MetricDelta{InSample: is, OutOfSample: oos, Difference: oos - is}
	}

	degradation := dto.DegradationAnalysis{
		ReturnDegradation:  isMetrics.AnnualizedReturn - oosMetrics.AnnualizedReturn,
		SharpeDegradation:  isMetrics.AnnualizedSharpe - oosMetrics.AnnualizedSharpe,
		DrawdownIncrease:   math.Abs(oosMetrics.MaxDrawdownPct) - math.Abs(isMetrics.MaxDrawdownPct),
		VolatilityIncrease: oosMetrics.AnnualizedVolatility - isMetrics.AnnualizedVolatility,
	}
	degradation.OverallScore = 0.4*degradation.ReturnDegradation +
		0.3*degradation.SharpeDegradation +
		0.2*degradation.DrawdownIncrease +
		0.1*degradation.VolatilityIncrease

	return &dto.ComparisonReport{
		ComparedAt:  time.Now().UTC(),
		InSample:    isMetrics,
		OutOfSample: oosMetrics,
		Metrics: map[string]dto.MetricDelta{
			"total_return_pct":      delta(isMetrics.TotalReturnPct, oosMetrics.TotalReturnPct),
			"annualized_return":     delta(isMetrics.AnnualizedReturn, oosMetrics.AnnualizedReturn),
			"annualized_sharpe":     delta(isMetrics.AnnualizedSharpe, oosMetrics.AnnualizedSharpe),
			"sortino_ratio":         delta(isMetrics.SortinoRatio, oosMetrics.SortinoRatio),
			"max_drawdown_pct":      delta(isMetrics.MaxDrawdownPct, oosMetrics.MaxDrawdownPct),
			"annualized_volatility": delta(isMetrics.AnnualizedVolatility, oosMetrics.AnnualizedVolatility),
			"win_rate":              delta(isMetrics.WinRate, oosMetrics.WinRate),
		},
		MeanDifference:    formulas.TestMeanDifference(inSample.DailyReturns, outOfSample.DailyReturns, significanceLevel),
		Degradation:       degradation,
		ConsistencyRating: consistencyRating(degradation.OverallScore),
	}
}

// consistencyRating maps the overall degradation score to a coarse
// assessment of how well the strategy held up out of sample.
func consistencyRating(overallScore float64) string {
	switch {
	case overallScore < 2:
		return "very_high"
	case overallScore < 5:
		return "high"
	case overallScore < 10:
		return "moderate"
	default:
		return "low"
	}
}
