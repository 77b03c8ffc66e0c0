package repository

import (
	"gorm.io/gorm"

	"etf-momentum/config"
	"etf-momentum/pkg/cache"
	"etf-momentum/pkg/logger"
)

type Repository struct {
	YahooFinanceRepo YahooFinanceRepository
	CandleRepo       CandleRepository
	BacktestRunRepo  BacktestRunRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, memCache cache.Cache, log *logger.Logger) *Repository {
	yahooRepo := NewYahooFinanceRepository(cfg, log)

	return &Repository{
		YahooFinanceRepo: yahooRepo,
		CandleRepo:       NewCandleRepository(db, yahooRepo, memCache, log),
		BacktestRunRepo:  NewBacktestRunRepository(db),
	}
}
