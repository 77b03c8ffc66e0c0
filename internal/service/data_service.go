package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"etf-momentum/internal/dto"
	"etf-momentum/internal/model"
	"etf-momentum/internal/repository"
	"etf-momentum/pkg/logger"
)

const maxConcurrentLoads = 4

type DataService interface {
	LoadHistories(ctx context.Context, symbols []string, start, end time.Time, minRows int) (map[string]dto.PriceSeries, error)
	RefreshHistories(ctx context.Context, symbols []string, start, end time.Time) error
}

// dataService assembles per-symbol price histories for simulation runs. A
// load that cannot satisfy the minimum row count for any requested symbol
// fails the whole load; the simulation engines treat that as a run abort.
type dataService struct {
	log        *logger.Logger
	candleRepo repository.CandleRepository
}

func NewDataService(log *logger.Logger, candleRepo repository.CandleRepository) DataService {
	return &dataService{
		log:        log,
		candleRepo: candleRepo,
	}
}

func (s *dataService) LoadHistories(ctx context.Context, symbols []string, start, end time.Time, minRows int) (map[string]dto.PriceSeries, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols requested")
	}

	histories := make(map[string]dto.PriceSeries, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			series, err := s.candleRepo.GetSeries(gctx, model.GetCandlesParam{
				Symbol:   symbol,
				DateFrom: start,
				DateTo:   end,
			})
			if err != nil {
				return fmt.Errorf("failed to load history for %s: %w", symbol, err)
			}
			if len(series) < minRows {
				return fmt.Errorf("insufficient history for %s: have %d rows, need %d", symbol, len(series), minRows)
			}

			if issues := series.QualityIssues(); len(issues) > 0 {
				s.log.WarnContext(gctx, "price series has quality issues",
					logger.StringField("symbol", symbol),
					logger.Field("issues", issues))
				return fmt.Errorf("invalid price data for %s: %s", symbol, issues[0])
			}

			mu.Lock()
			histories[symbol] = series
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return histories, nil
}

// RefreshHistories force-pulls each symbol from the remote source, updating
// the candle store. Used by the scheduler; load paths go through
// LoadHistories.
func (s *dataService) RefreshHistories(ctx context.Context, symbols []string, start, end time.Time) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			series, err := s.candleRepo.Refresh(gctx, model.GetCandlesParam{
				Symbol:   symbol,
				DateFrom: start,
				DateTo:   end,
			})
			if err != nil {
				return fmt.Errorf("failed to refresh %s: %w", symbol, err)
			}
			s.log.InfoContext(gctx, "refreshed candles",
				logger.StringField("symbol", symbol),
				logger.IntField("rows", len(series)))
			return nil
		})
	}

	return g.Wait()
}
