package service

import (
	"etf-momentum/config"
	"etf-momentum/internal/repository"
	"etf-momentum/pkg/logger"
)

type Service struct {
	DataService        DataService
	BacktestService    BacktestService
	OOSBacktestService OOSBacktestService
	ComparisonService  ComparisonService
	SchedulerService   SchedulerService
	RunHistoryService  RunHistoryService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
) *Service {
	dataService := NewDataService(log, repo.CandleRepo)
	comparisonService := NewComparisonService()
	backtestService := NewBacktestService(cfg, log, dataService, repo.BacktestRunRepo)
	oosBacktestService := NewOOSBacktestService(cfg, log, dataService, backtestService, comparisonService, repo.BacktestRunRepo)
	schedulerService := NewSchedulerService(cfg, log, dataService)
	runHistoryService := NewRunHistoryService(repo.BacktestRunRepo)

	return &Service{
		DataService:        dataService,
		BacktestService:    backtestService,
		OOSBacktestService: oosBacktestService,
		ComparisonService:  comparisonService,
		SchedulerService:   schedulerService,
		RunHistoryService:  runHistoryService,
	}
}
