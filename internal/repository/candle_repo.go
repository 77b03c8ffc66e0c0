package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"etf-momentum/internal/dto"
	"etf-momentum/internal/model"
	"etf-momentum/pkg/cache"
	"etf-momentum/pkg/logger"
	"etf-momentum/pkg/utils"
)

type CandleRepository interface {
	GetSeries(ctx context.Context, param model.GetCandlesParam) (dto.PriceSeries, error)
	Upsert(ctx context.Context, symbol string, series dto.PriceSeries) error
	Refresh(ctx context.Context, param model.GetCandlesParam) (dto.PriceSeries, error)
}

// candleRepository serves price history from the local candles table, pulling
// from Yahoo Finance on a miss and caching assembled series in memory.
type candleRepository struct {
	db        *gorm.DB
	yahooRepo YahooFinanceRepository
	memCache  cache.Cache
	logger    *logger.Logger
}

func NewCandleRepository(db *gorm.DB, yahooRepo YahooFinanceRepository, memCache cache.Cache, log *logger.Logger) CandleRepository {
	return &candleRepository{
		db:        db,
		yahooRepo: yahooRepo,
		memCache:  memCache,
		logger:    log,
	}
}

func seriesCacheKey(param model.GetCandlesParam) string {
	return fmt.Sprintf("candles:%s:%s:%s",
		param.Symbol, utils.FormatDate(param.DateFrom), utils.FormatDate(param.DateTo))
}

// GetSeries returns the daily series for a symbol, preferring the memory
// cache, then the database, then the remote source. Remote results are
// persisted before being returned.
func (r *candleRepository) GetSeries(ctx context.Context, param model.GetCandlesParam) (dto.PriceSeries, error) {
	key := seriesCacheKey(param)
	if cached, found := cache.GetTyped[dto.PriceSeries](r.memCache, key); found {
		return cached, nil
	}

	series, err := r.getStored(ctx, param)
	if err != nil {
		return nil, err
	}
	if len(series) > 0 {
		r.memCache.Set(key, series, 0)
		return series, nil
	}

	return r.Refresh(ctx, param)
}

// Refresh bypasses local storage, pulls the series from the remote source,
// and upserts it into the candles table.
func (r *candleRepository) Refresh(ctx context.Context, param model.GetCandlesParam) (dto.PriceSeries, error) {
	series, err := r.yahooRepo.GetDailyCandles(ctx, param)
	if err != nil {
		return nil, err
	}

	if err := r.Upsert(ctx, param.Symbol, series); err != nil {
		r.logger.ErrorContext(ctx, "failed to persist candles",
			logger.StringField("symbol", param.Symbol),
			logger.ErrorField(err))
		return nil, err
	}

	r.memCache.Set(seriesCacheKey(param), series, 0)
	return series, nil
}

func (r *candleRepository) getStored(ctx context.Context, param model.GetCandlesParam) (dto.PriceSeries, error) {
	var rows []model.Candle
	query := r.db.WithContext(ctx).Where("symbol = ?", param.Symbol)
	if !param.DateFrom.IsZero() {
		query = query.Where("date >= ?", param.DateFrom)
	}
	if !param.DateTo.IsZero() {
		query = query.Where("date <= ?", param.DateTo)
	}

	if err := query.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	series := make(dto.PriceSeries, 0, len(rows))
	for _, row := range rows {
		series = append(series, dto.Candle{
			Date:   utils.NormalizeDate(row.Date),
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	return series, nil
}

// Upsert writes candles idempotently, updating prices on (symbol, date)
// conflicts so that re-fetching a range never duplicates rows.
func (r *candleRepository) Upsert(ctx context.Context, symbol string, series dto.PriceSeries) error {
	if len(series) == 0 {
		return nil
	}

	rows := make([]model.Candle, 0, len(series))
	for _, candle := range series {
		rows = append(rows, model.Candle{
			Symbol: symbol,
			Date:   utils.NormalizeDate(candle.Date),
			Open:   candle.Open,
			High:   candle.High,
			Low:    candle.Low,
			Close:  candle.Close,
			Volume: candle.Volume,
		})
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "updated_at"}),
	}).CreateInBatches(rows, 200).Error
}
