package service

import (
	"context"
	"encoding/json"
	"time"

	"etf-momentum/config"
	"etf-momentum/internal/dto"
	"etf-momentum/internal/model"
	"etf-momentum/internal/paramlock"
	"etf-momentum/internal/portfolio"
	"etf-momentum/internal/repository"
	"etf-momentum/internal/strategy"
	"etf-momentum/pkg/logger"
	"etf-momentum/pkg/utils"
)

// StrategyName identifies the single built-in strategy in run records and
// parameter locks.
const StrategyName = "etf_momentum"

// warmupMonths is how far after the period start the first rebalance lands,
// so the longest momentum lookback always has history behind it.
const warmupMonths = 6

// minInSampleRows is the floor of observations a symbol needs before an
// in-sample run is allowed to start.
const minInSampleRows = 180

func minLoadRows(periods []int, floor int) int {
	need := maxPeriod(periods) + 1
	if floor > need {
		return floor
	}
	return need
}

type BacktestService interface {
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error)
	RunOnHistories(ctx context.Context, params dto.StrategyParams, histories map[string]dto.PriceSeries, start, end time.Time, initialCapital float64) (*dto.BacktestResult, error)
}

type backtestService struct {
	cfg             *config.Config
	log             *logger.Logger
	dataService     DataService
	backtestRunRepo repository.BacktestRunRepository
}

func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	dataService DataService,
	backtestRunRepo repository.BacktestRunRepository,
) BacktestService {
	return &backtestService{
		cfg:             cfg,
		log:             log,
		dataService:     dataService,
		backtestRunRepo: backtestRunRepo,
	}
}

// paramsFromRequest fills request gaps with the configured defaults. This is
// the in-sample side: parameters here are still free.
func (s *backtestService) paramsFromRequest(req dto.BacktestRequest) dto.StrategyParams {
	params := dto.StrategyParams{
		Periods:            req.Periods,
		Weights:            req.Weights,
		TransactionCostPct: req.TransactionCostPct,
		RebalanceFrequency: "monthly",
		Symbols:            req.Symbols,
	}
	if len(params.Periods) == 0 {
		params.Periods = s.cfg.Backtest.Periods
	}
	if len(params.Weights) == 0 {
		params.Weights = s.cfg.Backtest.Weights
	}
	if params.TransactionCostPct == 0 {
		params.TransactionCostPct = s.cfg.Backtest.TransactionCostPct
	}
	if len(params.Symbols) == 0 {
		params.Symbols = s.cfg.Backtest.Symbols
	}
	return params
}

func maxPeriod(periods []int) int {
	longest := 0
	for _, p := range periods {
		if p > longest {
			longest = p
		}
	}
	return longest
}

func (s *backtestService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error) {
	params := s.paramsFromRequest(req)

	initialCapital := req.InitialCapital
	if initialCapital == 0 {
		initialCapital = s.cfg.Backtest.InitialCapital
	}

	histories, err := s.dataService.LoadHistories(ctx, params.Symbols, req.StartDate, req.EndDate, minLoadRows(params.Periods, minInSampleRows))
	if err != nil {
		s.log.ErrorContext(ctx, "backtest aborted: data load failed", logger.ErrorField(err))
		return nil, err
	}

	result, err := s.RunOnHistories(ctx, params, histories, req.StartDate, req.EndDate, initialCapital)
	if err != nil {
		return nil, err
	}

	if err := saveRun(ctx, s.backtestRunRepo, model.BacktestRunKindInSample, params, result, nil); err != nil {
		s.log.WarnContext(ctx, "failed to persist backtest run", logger.ErrorField(err))
	}

	return result, nil
}

// RunOnHistories simulates over already-loaded histories. The first
// rebalance lands warmupMonths after the start so every lookback period is
// computable from day one.
func (s *backtestService) RunOnHistories(ctx context.Context, params dto.StrategyParams, histories map[string]dto.PriceSeries, start, end time.Time, initialCapital float64) (*dto.BacktestResult, error) {
	scorer, err := strategy.NewMomentumScorer(params.Periods, params.Weights)
	if err != nil {
		return nil, err
	}

	ledger := portfolio.NewLedger(initialCapital, params.TransactionCostPct)
	dates := rebalanceDates(utils.AddMonths(start, warmupMonths), end)

	run, err := runSimulation(ctx, s.log, scorer, ledger, histories, dates, end, nil)
	if err != nil {
		return nil, err
	}

	result := finalizeResult("in_sample", start, end, ledger, run, histories)

	s.log.InfoContext(ctx, "backtest completed",
		logger.TimeField("start", start),
		logger.TimeField("end", end),
		logger.IntField("rebalances", result.RebalanceCount),
		logger.FloatField("total_return_pct", result.TotalReturnPct))

	return result, nil
}

// finalizeResult assembles the result summary once a simulation has walked
// its full date range.
func finalizeResult(kind string, start, end time.Time, ledger *portfolio.Ledger, run *simulationRun, histories map[string]dto.PriceSeries) *dto.BacktestResult {
	finalValue := ledger.Valuate(pricesAsOf(histories, end))

	result := &dto.BacktestResult{
		BacktestType:       kind,
		StartDate:          utils.NormalizeDate(start),
		EndDate:            utils.NormalizeDate(end),
		InitialCapital:     ledger.InitialCapital(),
		FinalValue:         finalValue,
		RebalanceCount:     len(run.Records),
		TransactionSummary: ledger.TransactionSummary(),
		FinalPosition:      ledger.Snapshot(),
		RebalanceHistory:   run.Records,
		Transactions:       ledger.Transactions(),
		DailyReturns:       run.DailyReturns,
	}
	if ledger.InitialCapital() > 0 {
		result.TotalReturnPct = (finalValue/ledger.InitialCapital() - 1) * 100
	}
	return result
}

// saveRun persists a completed run with its parameters fingerprinted the
// same way the lock mechanism fingerprints them, so stored runs can be
// matched to locks later.
func saveRun(ctx context.Context, repo repository.BacktestRunRepository, kind string, params dto.StrategyParams, result *dto.BacktestResult, validationLog []dto.LockValidation) error {
	fingerprint, err := paramlock.Capture(StrategyName, params)
	if err != nil {
		return err
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return err
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}

	runRow := &model.BacktestRun{
		StrategyName:     StrategyName,
		Kind:             kind,
		StartDate:        result.StartDate,
		EndDate:          result.EndDate,
		ParamFingerprint: fingerprint,
		Params:           paramsJSON,
		Result:           resultJSON,
		FinalValue:       result.FinalValue,
		TotalReturnPct:   result.TotalReturnPct,
	}

	if len(validationLog) > 0 {
		logJSON, err := json.Marshal(validationLog)
		if err != nil {
			return err
		}
		runRow.ValidationLog = logJSON
	}

	return repo.Create(ctx, runRow)
}
