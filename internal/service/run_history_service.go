package service

import (
	"context"

	"etf-momentum/internal/model"
	"etf-momentum/internal/repository"
)

type RunHistoryService interface {
	ListRuns(ctx context.Context, param model.GetBacktestRunsParam) ([]model.BacktestRun, error)
	GetRun(ctx context.Context, id uint) (*model.BacktestRun, error)
}

type runHistoryService struct {
	backtestRunRepo repository.BacktestRunRepository
}

func NewRunHistoryService(backtestRunRepo repository.BacktestRunRepository) RunHistoryService {
	return &runHistoryService{backtestRunRepo: backtestRunRepo}
}

func (s *runHistoryService) ListRuns(ctx context.Context, param model.GetBacktestRunsParam) ([]model.BacktestRun, error) {
	return s.backtestRunRepo.Get(ctx, param)
}

func (s *runHistoryService) GetRun(ctx context.Context, id uint) (*model.BacktestRun, error) {
	return s.backtestRunRepo.GetByID(ctx, id)
}
