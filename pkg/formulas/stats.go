package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor for daily return series.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// ReturnsFromValues converts a value series to simple periodic returns,
// skipping steps whose base value is not positive.
func ReturnsFromValues(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			returns = append(returns, values[i]/values[i-1]-1)
		}
	}
	return returns
}

// AnnualizedVolatility calculates annualized volatility from daily returns.
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// SharpeRatio is mean return over volatility for the sampling period.
// Zero volatility yields zero rather than a division blowup.
func SharpeRatio(returns []float64) float64 {
	vol := StdDev(returns)
	if vol == 0 {
		return 0
	}
	return Mean(returns) / vol
}

// SortinoRatio is mean return over downside volatility.
func SortinoRatio(returns []float64) float64 {
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	downVol := StdDev(downside)
	if downVol == 0 {
		return 0
	}
	return Mean(returns) / downVol
}

// MaxDrawdown returns the largest peak-to-trough decline of the compounded
// return series as a negative fraction.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	cumulative := 1.0
	peak := 1.0
	maxDD := 0.0
	for _, r := range returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		dd := (cumulative - peak) / peak
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Skewness computes sample skewness, zero for fewer than three observations.
func Skewness(returns []float64) float64 {
	if len(returns) < 3 {
		return 0
	}
	mean := Mean(returns)
	std := StdDev(returns)
	if std == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range returns {
		sum += math.Pow((r-mean)/std, 3)
	}
	return sum / float64(len(returns))
}

// Kurtosis computes excess kurtosis, zero for fewer than four observations.
func Kurtosis(returns []float64) float64 {
	if len(returns) < 4 {
		return 0
	}
	mean := Mean(returns)
	std := StdDev(returns)
	if std == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range returns {
		sum += math.Pow((r-mean)/std, 4)
	}
	return sum/float64(len(returns)) - 3
}

// MeanDifferenceTest holds the outcome of a Welch-style two-sample test on
// return series means. The p-value uses the normal approximation, which is
// adequate at daily-return sample sizes.
type MeanDifferenceTest struct {
	Mean1         float64 `json:"mean_1"`
	Mean2         float64 `json:"mean_2"`
	Difference    float64 `json:"difference"`
	TStatistic    float64 `json:"t_statistic"`
	PValue        float64 `json:"p_value"`
	SignificantAt float64 `json:"significance_level"`
	Significant   bool    `json:"significant"`
}

// TestMeanDifference compares the means of two return series at the given
// significance level.
func TestMeanDifference(returns1, returns2 []float64, level float64) MeanDifferenceTest {
	result := MeanDifferenceTest{SignificantAt: level, PValue: 1}
	if len(returns1) < 2 || len(returns2) < 2 {
		return result
	}

	result.Mean1 = Mean(returns1)
	result.Mean2 = Mean(returns2)
	result.Difference = result.Mean1 - result.Mean2

	n1, n2 := float64(len(returns1)), float64(len(returns2))
	pooledSE := math.Sqrt(Variance(returns1)/n1 + Variance(returns2)/n2)
	if pooledSE == 0 {
		return result
	}

	result.TStatistic = result.Difference / pooledSE
	result.PValue = math.Erfc(math.Abs(result.TStatistic) / math.Sqrt2)
	result.Significant = result.PValue < level
	return result
}
