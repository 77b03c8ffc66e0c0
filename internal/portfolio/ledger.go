package portfolio

import (
	"fmt"
	"math"
	"time"

	"etf-momentum/internal/dto"
)

// SellStatus is the closed outcome set of a sell operation.
type SellStatus int

const (
	// SellExecuted means a held position was liquidated.
	SellExecuted SellStatus = iota
	// SellNoPosition means there was nothing to sell; this is a success.
	SellNoPosition
)

// SellResult reports one sell leg.
type SellResult struct {
	Status          SellStatus
	PreviousSymbol  string
	NetProceeds     float64
	TransactionCost float64
	Cash            float64
}

// BuyResult reports one executed buy leg.
type BuyResult struct {
	Symbol          string
	Shares          int64
	TotalCost       float64
	TransactionCost float64
	RemainingCash   float64
}

// RebalanceStatus is the closed outcome set of a rebalance.
type RebalanceStatus int

const (
	// RebalanceExecuted means the position was switched to the target.
	RebalanceExecuted RebalanceStatus = iota
	// RebalanceNoChange means the target was already held; nothing traded.
	RebalanceNoChange
	// RebalanceFailed means the rebalance did not complete. The ledger may
	// legitimately have sold the prior holding first: a buy-leg failure
	// leaves it all-cash, by design of the two-leg sequence.
	RebalanceFailed
)

// RebalanceResult reports one rebalance attempt. Reason is set only on
// failure and names the failed leg.
type RebalanceResult struct {
	Status RebalanceStatus
	Target string
	Sell   *SellResult
	Buy    *BuyResult
	Reason string
}

// Succeeded is true for both executed and no-change outcomes.
func (r RebalanceResult) Succeeded() bool {
	return r.Status != RebalanceFailed
}

// Ledger is single-position portfolio bookkeeping: at most one symbol held
// at a time, whole shares only, symmetric proportional transaction costs,
// and an append-only trade log. It is not safe for concurrent use; each
// simulation run owns its own instance.
type Ledger struct {
	initialCapital float64
	costRate       float64

	symbol       string
	shares       int64
	cash         float64
	lastValue    float64
	transactions []dto.TransactionRecord
}

// NewLedger starts a ledger with full cash and no position.
func NewLedger(initialCapital, costRate float64) *Ledger {
	return &Ledger{
		initialCapital: initialCapital,
		costRate:       costRate,
		cash:           initialCapital,
		lastValue:      initialCapital,
	}
}

// InitialCapital returns the starting cash.
func (l *Ledger) InitialCapital() float64 {
	return l.initialCapital
}

// CostRate returns the proportional transaction cost rate.
func (l *Ledger) CostRate() float64 {
	return l.costRate
}

func (l *Ledger) transactionCost(tradeValue float64) float64 {
	return math.Abs(tradeValue) * l.costRate
}

// Sell liquidates the current position at the given price. Holding nothing
// is a success-shaped no-op, not an error.
func (l *Ledger) Sell(price float64, date time.Time) SellResult {
	if l.symbol == "" || l.shares == 0 {
		return SellResult{Status: SellNoPosition, Cash: l.cash}
	}

	gross := float64(l.shares) * price
	cost := l.transactionCost(gross)
	net := gross - cost

	l.transactions = append(l.transactions, dto.TransactionRecord{
		Date:            date,
		Action:          dto.ActionSell,
		Symbol:          l.symbol,
		Shares:          l.shares,
		Price:           price,
		GrossAmount:     gross,
		TransactionCost: cost,
		NetAmount:       net,
	})

	previous := l.symbol
	l.cash += net
	l.symbol = ""
	l.shares = 0

	return SellResult{
		Status:          SellExecuted,
		PreviousSymbol:  previous,
		NetProceeds:     net,
		TransactionCost: cost,
		Cash:            l.cash,
	}
}

// Buy invests all available cash into the symbol at the given price, whole
// shares only. An estimated cost is reserved before sizing; if the actual
// gross plus cost still exceeds cash the share count is decremented once
// and recomputed.
func (l *Ledger) Buy(symbol string, price float64, date time.Time) (BuyResult, error) {
	if l.cash <= 0 {
		return BuyResult{}, fmt.Errorf("no cash available")
	}

	estimatedCost := l.cash * l.costRate
	available := l.cash - estimatedCost
	if available <= 0 {
		return BuyResult{}, fmt.Errorf("insufficient cash for transaction costs")
	}

	shares := int64(available / price)
	if shares <= 0 {
		return BuyResult{}, fmt.Errorf("insufficient cash to buy 1 share at %.2f", price)
	}

	gross := float64(shares) * price
	cost := l.transactionCost(gross)
	if gross+cost > l.cash {
		shares--
		if shares <= 0 {
			return BuyResult{}, fmt.Errorf("cannot afford any shares after transaction costs")
		}
		gross = float64(shares) * price
		cost = l.transactionCost(gross)
	}
	total := gross + cost

	l.transactions = append(l.transactions, dto.TransactionRecord{
		Date:            date,
		Action:          dto.ActionBuy,
		Symbol:          symbol,
		Shares:          shares,
		Price:           price,
		GrossAmount:     gross,
		TransactionCost: cost,
		NetAmount:       total,
	})

	l.cash -= total
	l.symbol = symbol
	l.shares = shares

	return BuyResult{
		Symbol:          symbol,
		Shares:          shares,
		TotalCost:       total,
		TransactionCost: cost,
		RemainingCash:   l.cash,
	}, nil
}

// Rebalance switches the position to the target symbol: sell the current
// holding, then buy the target with the proceeds. The two legs are not
// transactional — if the buy fails after a successful sell the ledger is
// left all-cash, and the result says which leg failed.
func (l *Ledger) Rebalance(target string, prices map[string]float64, date time.Time) RebalanceResult {
	targetPrice, ok := prices[target]
	if !ok {
		return RebalanceResult{
			Status: RebalanceFailed,
			Target: target,
			Reason: fmt.Sprintf("price not available for %s", target),
		}
	}

	if l.symbol == target {
		return RebalanceResult{Status: RebalanceNoChange, Target: target}
	}

	result := RebalanceResult{Status: RebalanceExecuted, Target: target}

	if l.symbol != "" {
		currentPrice, ok := prices[l.symbol]
		if !ok {
			return RebalanceResult{
				Status: RebalanceFailed,
				Target: target,
				Reason: fmt.Sprintf("price not available for current position %s", l.symbol),
			}
		}
		sell := l.Sell(currentPrice, date)
		result.Sell = &sell
	}

	buy, err := l.Buy(target, targetPrice, date)
	if err != nil {
		result.Status = RebalanceFailed
		result.Reason = fmt.Sprintf("failed to buy %s: %v", target, err)
		return result
	}
	result.Buy = &buy

	return result
}

// Valuate returns cash plus the marked value of any held position. A held
// symbol missing from the price map keeps the last known value; a stale
// valuation is allowed, not an error.
func (l *Ledger) Valuate(prices map[string]float64) float64 {
	if l.symbol == "" {
		l.lastValue = l.cash
		return l.lastValue
	}
	price, ok := prices[l.symbol]
	if !ok {
		return l.lastValue
	}
	l.lastValue = l.cash + float64(l.shares)*price
	return l.lastValue
}

// Snapshot returns the current position without exposing internals.
func (l *Ledger) Snapshot() dto.PositionSnapshot {
	return dto.PositionSnapshot{
		Symbol:         l.symbol,
		Shares:         l.shares,
		Cash:           l.cash,
		PortfolioValue: l.lastValue,
	}
}

// Transactions returns a copy of the append-only trade log.
func (l *Ledger) Transactions() []dto.TransactionRecord {
	return append([]dto.TransactionRecord(nil), l.transactions...)
}

// TransactionSummary aggregates the trade log.
func (l *Ledger) TransactionSummary() dto.TransactionSummary {
	summary := dto.TransactionSummary{TotalTransactions: len(l.transactions)}
	if len(l.transactions) == 0 {
		return summary
	}

	for _, t := range l.transactions {
		summary.TotalCosts += t.TransactionCost
		if t.Action == dto.ActionBuy {
			summary.BuyTransactions++
		} else {
			summary.SellTransactions++
		}
	}
	summary.AverageCost = summary.TotalCosts / float64(summary.TotalTransactions)
	return summary
}
