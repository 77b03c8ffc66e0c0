package repository

import (
	"context"

	"gorm.io/gorm"

	"etf-momentum/internal/model"
)

type BacktestRunRepository interface {
	Create(ctx context.Context, run *model.BacktestRun) error
	Get(ctx context.Context, param model.GetBacktestRunsParam) ([]model.BacktestRun, error)
	GetByID(ctx context.Context, id uint) (*model.BacktestRun, error)
}

type backtestRunRepository struct {
	db *gorm.DB
}

func NewBacktestRunRepository(db *gorm.DB) BacktestRunRepository {
	return &backtestRunRepository{db: db}
}

func (r *backtestRunRepository) Create(ctx context.Context, run *model.BacktestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *backtestRunRepository) Get(ctx context.Context, param model.GetBacktestRunsParam) ([]model.BacktestRun, error) {
	query := r.db.WithContext(ctx).Model(&model.BacktestRun{})
	if param.StrategyName != nil {
		query = query.Where("strategy_name = ?", *param.StrategyName)
	}
	if param.Kind != nil {
		query = query.Where("kind = ?", *param.Kind)
	}
	if param.Limit > 0 {
		query = query.Limit(param.Limit)
	}

	var runs []model.BacktestRun
	if err := query.Order("created_at DESC").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *backtestRunRepository) GetByID(ctx context.Context, id uint) (*model.BacktestRun, error) {
	var run model.BacktestRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}
