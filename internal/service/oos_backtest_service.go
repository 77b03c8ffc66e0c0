package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"etf-momentum/config"
	"etf-momentum/internal/dataset"
	"etf-momentum/internal/dto"
	"etf-momentum/internal/model"
	"etf-momentum/internal/paramlock"
	"etf-momentum/internal/portfolio"
	"etf-momentum/internal/repository"
	"etf-momentum/internal/strategy"
	"etf-momentum/pkg/logger"
	"etf-momentum/pkg/utils"
)

type OOSBacktestService interface {
	RunOOSBacktest(ctx context.Context, lock *paramlock.Lock, frozen dto.StrategyParams, histories map[string]dto.PriceSeries, start, end time.Time, initialCapital float64) (*dto.OOSBacktestResult, error)
	RunOOSAnalysis(ctx context.Context, req dto.OOSAnalysisRequest) (*dto.OOSAnalysisResult, error)
}

// oosBacktestService runs frozen-parameter simulations and the full
// split → in-sample → freeze → out-of-sample → compare pipeline. Parameter
// drift is a hard integrity violation here: any lock mismatch aborts the
// whole run, never just the offending step.
type oosBacktestService struct {
	cfg             *config.Config
	log             *logger.Logger
	dataService     DataService
	backtestService BacktestService
	comparison      ComparisonService
	backtestRunRepo repository.BacktestRunRepository
	partitioner     *dataset.Partitioner
}

func NewOOSBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	dataService DataService,
	backtestService BacktestService,
	comparison ComparisonService,
	backtestRunRepo repository.BacktestRunRepository,
) OOSBacktestService {
	return &oosBacktestService{
		cfg:             cfg,
		log:             log,
		dataService:     dataService,
		backtestService: backtestService,
		comparison:      comparison,
		backtestRunRepo: backtestRunRepo,
		partitioner:     dataset.NewPartitioner(),
	}
}

func violationError(validation dto.LockValidation) error {
	reasons := make([]string, 0, len(validation.Violations))
	for _, v := range validation.Violations {
		reasons = append(reasons, v.String())
	}
	return fmt.Errorf("parameter integrity violation: %s", strings.Join(reasons, "; "))
}

// RunOOSBacktest simulates the out-of-sample window under frozen
// parameters. Histories must include pre-start rows so momentum lookbacks
// are computable at the very first rebalance; the first rebalance is the
// window start itself. The lock is checked before the run and again at
// every rebalance date, and every check lands in the validation log.
func (s *oosBacktestService) RunOOSBacktest(ctx context.Context, lock *paramlock.Lock, frozen dto.StrategyParams, histories map[string]dto.PriceSeries, start, end time.Time, initialCapital float64) (*dto.OOSBacktestResult, error) {
	validator := paramlock.NewValidator()

	validation, err := validator.ValidateAgainstLock(lock, frozen)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		s.log.ErrorContext(ctx, "out-of-sample run aborted: parameters drifted from lock",
			logger.IntField("violations", len(validation.Violations)))
		return nil, violationError(validation)
	}

	scorer, err := strategy.NewMomentumScorer(frozen.Periods, frozen.Weights)
	if err != nil {
		return nil, err
	}

	ledger := portfolio.NewLedger(initialCapital, frozen.TransactionCostPct)
	dates := rebalanceDates(start, end)

	preStep := func(stepCtx context.Context, date time.Time) error {
		stepValidation, err := validator.ValidateAgainstLock(lock, frozen)
		if err != nil {
			return err
		}
		if !stepValidation.Valid {
			s.log.ErrorContext(stepCtx, "parameter drift detected mid-run, aborting",
				logger.TimeField("date", date),
				logger.IntField("violations", len(stepValidation.Violations)))
			return violationError(stepValidation)
		}
		return nil
	}

	run, err := runSimulation(ctx, s.log, scorer, ledger, histories, dates, end, preStep)
	if err != nil {
		return nil, err
	}

	result := finalizeResult("out_of_sample", start, end, ledger, run, histories)

	summary := validator.Summarize()
	oosResult := &dto.OOSBacktestResult{
		BacktestResult:   *result,
		FrozenParams:     frozen,
		ValidationLog:    validator.AuditLog(),
		ValidationPassed: summary.Failed == 0,
	}

	s.log.InfoContext(ctx, "out-of-sample backtest completed",
		logger.TimeField("start", start),
		logger.TimeField("end", end),
		logger.IntField("rebalances", result.RebalanceCount),
		logger.IntField("lock_validations", summary.Total),
		logger.FloatField("total_return_pct", result.TotalReturnPct))

	return oosResult, nil
}

// RunOOSAnalysis is the full pipeline: load, split at the cut date,
// establish the in-sample baseline with free parameters, freeze those
// parameters into a lock, rerun the out-of-sample window under the lock,
// and compare the two periods.
func (s *oosBacktestService) RunOOSAnalysis(ctx context.Context, req dto.OOSAnalysisRequest) (*dto.OOSAnalysisResult, error) {
	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = s.cfg.Backtest.Symbols
	}
	initialCapital := req.InitialCapital
	if initialCapital == 0 {
		initialCapital = s.cfg.Backtest.InitialCapital
	}
	oosFraction := req.OOSFraction
	if oosFraction == 0 {
		oosFraction = s.cfg.Backtest.OOSFraction
	}

	params := dto.StrategyParams{
		Periods:            s.cfg.Backtest.Periods,
		Weights:            s.cfg.Backtest.Weights,
		TransactionCostPct: s.cfg.Backtest.TransactionCostPct,
		RebalanceFrequency: "monthly",
		Symbols:            symbols,
	}

	histories, err := s.dataService.LoadHistories(ctx, symbols, req.StartDate, req.EndDate, minLoadRows(params.Periods, s.cfg.Backtest.MinOOSObservations))
	if err != nil {
		s.log.ErrorContext(ctx, "analysis aborted: data load failed", logger.ErrorField(err))
		return nil, err
	}

	splitDate := req.SplitDate
	if splitDate.IsZero() {
		splitDate, err = s.partitioner.RecommendSplitDate(longestSeries(histories), oosFraction)
		if err != nil {
			return nil, err
		}
	}
	splitDate = utils.NormalizeDate(splitDate)

	partitions, warnings := s.partitioner.SplitAll(histories, splitDate)
	if len(partitions) == 0 {
		return nil, fmt.Errorf("no symbol passed partition validation at split date %s: %s",
			utils.FormatDate(splitDate), strings.Join(warnings, "; "))
	}

	// Symbols that failed partition validation are out of the study
	// entirely: both periods trade the same surviving universe, otherwise
	// the comparison would measure different strategies.
	tradable := make([]string, 0, len(partitions))
	inSampleHistories := make(map[string]dto.PriceSeries, len(partitions))
	oosHistories := make(map[string]dto.PriceSeries, len(partitions))
	for symbol, partition := range partitions {
		tradable = append(tradable, symbol)
		inSampleHistories[symbol] = partition.InSample
		oosHistories[symbol] = histories[symbol]
	}
	sort.Strings(tradable)
	params.Symbols = tradable

	inSampleEnd := splitDate.AddDate(0, 0, -1)
	inSampleResult, err := s.backtestService.RunOnHistories(ctx, params, inSampleHistories, req.StartDate, inSampleEnd, initialCapital)
	if err != nil {
		return nil, fmt.Errorf("in-sample baseline failed: %w", err)
	}

	// Freeze. From here on the parameters in effect are the lock's.
	lock, err := paramlock.NewLock(StrategyName, params)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "parameters frozen",
		logger.StringField("fingerprint", lock.Fingerprint),
		logger.TimeField("split_date", splitDate))

	// The out-of-sample run sees each survivor's full history, pre-split
	// rows included, so lookbacks are computable at the split date; per-step
	// slicing keeps later rows invisible at earlier dates.
	oosResult, err := s.RunOOSBacktest(ctx, lock, params, oosHistories, splitDate, req.EndDate, initialCapital)
	if err != nil {
		return nil, fmt.Errorf("out-of-sample run failed: %w", err)
	}

	var comparison *dto.ComparisonReport
	if s.comparison != nil {
		comparison = s.comparison.Compare(inSampleResult, &oosResult.BacktestResult)
	}

	analysis := &dto.OOSAnalysisResult{
		AnalysisDate:     time.Now().UTC(),
		SplitDate:        splitDate,
		SplitWarnings:    warnings,
		InSample:         inSampleResult,
		OutOfSample:      oosResult,
		FrozenParams:     params,
		ParamFingerprint: lock.Fingerprint,
		Comparison:       comparison,
		Rigor:            s.rigorSummary(partitions, oosResult),
	}

	if err := saveRun(ctx, s.backtestRunRepo, model.BacktestRunKindOutOfSample, params, &oosResult.BacktestResult, oosResult.ValidationLog); err != nil {
		s.log.WarnContext(ctx, "failed to persist out-of-sample run", logger.ErrorField(err))
	}

	return analysis, nil
}

// rigorSummary reports whether the scientific controls held: frozen
// parameters, no leakage across the split, and a clean validation trail.
// Temporal separation is re-checked from the partition date ranges rather
// than trusted from the split step.
func (s *oosBacktestService) rigorSummary(partitions map[string]dataset.Partition, oosResult *dto.OOSBacktestResult) dto.RigorSummary {
	noLeakage := true
	for _, partition := range partitions {
		lastIn, okIn := partition.InSample.LastDate()
		firstOut, okOut := partition.OutOfSample.FirstDate()
		if !okIn || !okOut || !lastIn.Before(firstOut) {
			noLeakage = false
		}
	}

	failed := 0
	for _, entry := range oosResult.ValidationLog {
		if !entry.Valid {
			failed++
		}
	}
	total := len(oosResult.ValidationLog)

	summary := dto.RigorSummary{
		ParametersFrozen:        oosResult.ValidationPassed,
		NoDataLeakage:           noLeakage,
		NoParameterOptimization: oosResult.ValidationPassed,
		TemporalSeparation:      noLeakage,
		ValidationCount:         total,
		FailedValidations:       failed,
	}
	if total > 0 {
		summary.FailureRate = float64(failed) / float64(total) * 100
	}
	return summary
}

func longestSeries(histories map[string]dto.PriceSeries) dto.PriceSeries {
	var longest dto.PriceSeries
	for _, series := range histories {
		if len(series) > len(longest) {
			longest = series
		}
	}
	return longest
}
