package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-momentum/config"
	"etf-momentum/internal/dataset"
	"etf-momentum/internal/dto"
	"etf-momentum/internal/model"
	"etf-momentum/internal/paramlock"
	"etf-momentum/pkg/utils"
)

func frozenTestParams() dto.StrategyParams {
	return dto.StrategyParams{
		Periods:            []int{30},
		Weights:            []float64{1.0},
		TransactionCostPct: 0.001,
		RebalanceFrequency: "monthly",
		Symbols:            []string{"UP", "FLAT"},
	}
}

func TestRunOOSBacktestValidatesEveryStep(t *testing.T) {
	log := testLogger(t)
	svc := &oosBacktestService{log: log}

	params := frozenTestParams()
	lock, err := paramlock.NewLock(StrategyName, params)
	require.NoError(t, err)

	histories := map[string]dto.PriceSeries{
		"UP":   trendSeries(t, "2024-01-01", 300, 100, 0.002),
		"FLAT": trendSeries(t, "2024-01-01", 300, 100, 0),
	}

	start, _ := utils.ParseDate("2024-06-01")
	end, _ := utils.ParseDate("2024-10-01")

	result, err := svc.RunOOSBacktest(context.Background(), lock, params, histories, start, end, 100000)
	require.NoError(t, err)

	// One up-front check plus one per rebalance date (June through October).
	assert.Len(t, result.ValidationLog, 6)
	assert.True(t, result.ValidationPassed)
	for _, entry := range result.ValidationLog {
		assert.True(t, entry.Valid)
		assert.True(t, entry.FingerprintMatch)
	}

	assert.Equal(t, "out_of_sample", result.BacktestType)
	assert.Equal(t, 5, result.RebalanceCount)
	assert.Equal(t, "2024-06-01", utils.FormatDate(result.RebalanceHistory[0].Date))
	assert.Equal(t, params, result.FrozenParams)
}

func TestRunOOSBacktestAbortsOnParameterDrift(t *testing.T) {
	log := testLogger(t)
	svc := &oosBacktestService{log: log}

	lock, err := paramlock.NewLock(StrategyName, frozenTestParams())
	require.NoError(t, err)

	drifted := frozenTestParams()
	drifted.TransactionCostPct = 0.005

	histories := map[string]dto.PriceSeries{
		"UP": trendSeries(t, "2024-01-01", 300, 100, 0.002),
	}

	start, _ := utils.ParseDate("2024-06-01")
	end, _ := utils.ParseDate("2024-10-01")

	result, err := svc.RunOOSBacktest(context.Background(), lock, drifted, histories, start, end, 100000)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "transaction_cost_pct")
	assert.Contains(t, err.Error(), "parameter integrity violation")
}

type staticDataService struct {
	histories map[string]dto.PriceSeries
}

func (s *staticDataService) LoadHistories(ctx context.Context, symbols []string, start, end time.Time, minRows int) (map[string]dto.PriceSeries, error) {
	return s.histories, nil
}

func (s *staticDataService) RefreshHistories(ctx context.Context, symbols []string, start, end time.Time) error {
	return nil
}

type noopRunRepo struct{}

func (noopRunRepo) Create(ctx context.Context, run *model.BacktestRun) error { return nil }

func (noopRunRepo) Get(ctx context.Context, param model.GetBacktestRunsParam) ([]model.BacktestRun, error) {
	return nil, nil
}

func (noopRunRepo) GetByID(ctx context.Context, id uint) (*model.BacktestRun, error) {
	return nil, nil
}

func TestRunOOSAnalysisExcludesFailedSymbolsFromBothPeriods(t *testing.T) {
	log := testLogger(t)

	cfg := &config.Config{
		Backtest: config.Backtest{
			Periods:            []int{30},
			Weights:            []float64{1.0},
			TransactionCostPct: 0.001,
		},
	}

	// GOOD covers the whole study window. HOT rallies hard but its series
	// ends ten days past the split, so it fails the out-of-sample minimum.
	histories := map[string]dto.PriceSeries{
		"GOOD": trendSeries(t, "2024-01-01", 420, 100, 0.001),
		"HOT":  trendSeries(t, "2024-01-01", 315, 100, 0.01),
	}

	svc := &oosBacktestService{
		cfg:             cfg,
		log:             log,
		dataService:     &staticDataService{histories: histories},
		backtestService: &backtestService{cfg: cfg, log: log},
		comparison:      NewComparisonService(),
		backtestRunRepo: noopRunRepo{},
		partitioner:     dataset.NewPartitioner(),
	}

	start, _ := utils.ParseDate("2024-01-01")
	end, _ := utils.ParseDate("2025-02-20")
	split, _ := utils.ParseDate("2024-11-01")

	analysis, err := svc.RunOOSAnalysis(context.Background(), dto.OOSAnalysisRequest{
		Symbols:        []string{"GOOD", "HOT"},
		StartDate:      start,
		EndDate:        end,
		SplitDate:      split,
		InitialCapital: 100000,
	})
	require.NoError(t, err)

	require.NotEmpty(t, analysis.SplitWarnings)
	assert.Contains(t, analysis.SplitWarnings[0], "HOT")

	// The excluded symbol is gone from the frozen universe and from every
	// out-of-sample decision, not just from the in-sample baseline.
	assert.Equal(t, []string{"GOOD"}, analysis.FrozenParams.Symbols)
	require.NotEmpty(t, analysis.OutOfSample.RebalanceHistory)
	for _, record := range analysis.OutOfSample.RebalanceHistory {
		assert.Equal(t, "GOOD", record.SelectedSymbol)
		for _, entry := range record.Rankings {
			assert.NotEqual(t, "HOT", entry.Symbol)
		}
	}

	assert.True(t, analysis.Rigor.NoDataLeakage)
	assert.True(t, analysis.Rigor.TemporalSeparation)
}

func TestRigorSummaryDetectsOverlappingPartitions(t *testing.T) {
	svc := &oosBacktestService{log: testLogger(t)}

	overlapping := trendSeries(t, "2024-01-01", 40, 100, 0)
	partitions := map[string]dataset.Partition{
		"BAD": {
			Symbol:      "BAD",
			InSample:    overlapping[:25],
			OutOfSample: overlapping[20:],
		},
	}

	summary := svc.rigorSummary(partitions, &dto.OOSBacktestResult{})
	assert.False(t, summary.NoDataLeakage)
	assert.False(t, summary.TemporalSeparation)
}
