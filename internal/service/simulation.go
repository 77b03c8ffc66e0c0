package service

import (
	"context"
	"sort"
	"time"

	"etf-momentum/internal/dto"
	"etf-momentum/internal/portfolio"
	"etf-momentum/internal/strategy"
	"etf-momentum/pkg/formulas"
	"etf-momentum/pkg/logger"
	"etf-momentum/pkg/utils"
)

// rebalanceDates generates monthly rebalance dates from first to end,
// inclusive of end when it lands on a step.
func rebalanceDates(first, end time.Time) []time.Time {
	first = utils.NormalizeDate(first)
	end = utils.NormalizeDate(end)

	var dates []time.Time
	for d := first; !d.After(end); d = utils.AddMonths(d, 1) {
		dates = append(dates, d)
	}
	return dates
}

// tradingCalendar is the sorted union of candle dates across all symbols.
func tradingCalendar(histories map[string]dto.PriceSeries) []time.Time {
	seen := make(map[time.Time]bool)
	var calendar []time.Time
	for _, series := range histories {
		for _, candle := range series {
			day := utils.NormalizeDate(candle.Date)
			if !seen[day] {
				seen[day] = true
				calendar = append(calendar, day)
			}
		}
	}
	sort.Slice(calendar, func(i, j int) bool { return calendar[i].Before(calendar[j]) })
	return calendar
}

// pricesAsOf resolves each symbol's last known close at or before the given
// date. Symbols with no visible history yet are left out of the map.
func pricesAsOf(histories map[string]dto.PriceSeries, date time.Time) map[string]float64 {
	prices := make(map[string]float64, len(histories))
	for symbol, series := range histories {
		if close, ok := series.CloseAsOf(date); ok {
			prices[symbol] = close
		}
	}
	return prices
}

// simulationRun is the outcome of one pass over the rebalance dates.
type simulationRun struct {
	Records      []dto.RebalanceRecord
	DailyValues  []float64
	DailyReturns []float64
}

// valueDays appends the ledger's worth on each trading day in [from, to].
func (r *simulationRun) valueDays(ledger *portfolio.Ledger, histories map[string]dto.PriceSeries, calendar []time.Time, from, to time.Time) {
	for _, day := range calendar {
		if day.Before(from) || day.After(to) {
			continue
		}
		r.DailyValues = append(r.DailyValues, ledger.Valuate(pricesAsOf(histories, day)))
	}
}

// runSimulation steps through the rebalance dates in chronological order.
// At each date it scores momentum over history sliced to that date, picks
// the top-ranked symbol, and rebalances the ledger to it. Dates with an
// empty ranking are skipped without a record; a failed rebalance is
// recorded and the loop continues. preStep, when set, runs before any
// scoring at each date and aborts the whole run by returning an error.
//
// Between rebalance dates the ledger is valued on every trading day so the
// run carries a daily portfolio value series alongside the decision trail.
func runSimulation(
	ctx context.Context,
	log *logger.Logger,
	scorer *strategy.MomentumScorer,
	ledger *portfolio.Ledger,
	histories map[string]dto.PriceSeries,
	dates []time.Time,
	endDate time.Time,
	preStep func(ctx context.Context, date time.Time) error,
) (*simulationRun, error) {
	run := &simulationRun{}
	if len(dates) == 0 {
		return run, nil
	}

	calendar := tradingCalendar(histories)
	endDate = utils.NormalizeDate(endDate)

	for i, date := range dates {
		windowEnd := endDate
		if i+1 < len(dates) {
			windowEnd = dates[i+1].AddDate(0, 0, -1)
		}

		if preStep != nil {
			if err := preStep(ctx, date); err != nil {
				return nil, err
			}
		}

		// Only rows at or before the rebalance date are visible to the
		// scorer. Scores at date D must not depend on anything after D.
		visible := make(map[string]dto.PriceSeries, len(histories))
		for symbol, series := range histories {
			visible[symbol] = series.UpTo(date)
		}

		ranking := scorer.ScoreAll(visible)
		top, ok := ranking.Top()
		if !ok {
			log.DebugContext(ctx, "no scorable symbols at rebalance date, skipping",
				logger.TimeField("date", date))
			// The window still happened: the untouched position (or cash)
			// is valued day by day so the daily series has no gaps.
			run.valueDays(ledger, histories, calendar, date, windowEnd)
			continue
		}

		prices := pricesAsOf(histories, date)
		valueBefore := ledger.Valuate(prices)

		rebalance := ledger.Rebalance(top.Symbol, prices, date)

		record := dto.RebalanceRecord{
			Date:                 date,
			SelectedSymbol:       top.Symbol,
			MomentumScore:        top.Score,
			PortfolioValueBefore: valueBefore,
			Succeeded:            rebalance.Succeeded(),
			Rankings:             ranking,
		}
		if rebalance.Succeeded() {
			record.PortfolioValueAfter = utils.ToPointer(ledger.Valuate(prices))
		} else {
			record.FailureReason = rebalance.Reason
			log.WarnContext(ctx, "rebalance failed, continuing simulation",
				logger.TimeField("date", date),
				logger.StringField("target", top.Symbol),
				logger.StringField("reason", rebalance.Reason))
		}
		run.Records = append(run.Records, record)

		// Value the (now fixed) position on each trading day until the
		// next rebalance.
		run.valueDays(ledger, histories, calendar, date, windowEnd)
	}

	run.DailyReturns = formulas.ReturnsFromValues(run.DailyValues)
	return run, nil
}
