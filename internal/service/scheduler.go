package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"etf-momentum/config"
	"etf-momentum/pkg/logger"
)

type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	RefreshCandles(ctx context.Context) error
}

// schedulerService keeps the candle store current by re-pulling the
// configured symbols on a cron schedule. It refreshes enough history to
// cover the longest momentum lookback plus the warmup window.
type schedulerService struct {
	cfg         *config.Config
	log         *logger.Logger
	dataService DataService
	cron        *cron.Cron
}

func NewSchedulerService(cfg *config.Config, log *logger.Logger, dataService DataService) SchedulerService {
	return &schedulerService{
		cfg:         cfg,
		log:         log,
		dataService: dataService,
		cron:        cron.New(),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Scheduler.RefreshSpec, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Scheduler.TimeoutDuration)
		defer cancel()

		if err := s.RefreshCandles(runCtx); err != nil {
			s.log.ErrorContext(runCtx, "scheduled candle refresh failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.InfoContext(ctx, "candle refresh scheduler started",
		logger.StringField("spec", s.cfg.Scheduler.RefreshSpec))
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("candle refresh scheduler stopped")
}

func (s *schedulerService) RefreshCandles(ctx context.Context) error {
	end := time.Now().UTC()
	start := end.AddDate(0, -(warmupMonths + 1), 0)

	s.log.InfoContext(ctx, "refreshing candles",
		logger.Field("symbols", s.cfg.Backtest.Symbols),
		logger.TimeField("from", start),
		logger.TimeField("to", end))

	return s.dataService.RefreshHistories(ctx, s.cfg.Backtest.Symbols, start, end)
}
