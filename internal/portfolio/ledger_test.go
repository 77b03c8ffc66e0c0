package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-momentum/internal/dto"
)

var tradeDate = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func TestBuyAllInWholeShares(t *testing.T) {
	ledger := NewLedger(100000, 0.001)

	buy, err := ledger.Buy("SPY", 100, tradeDate)
	require.NoError(t, err)

	// 100000 cash, 100 reserved for estimated costs, 99900 investable.
	assert.Equal(t, int64(999), buy.Shares)
	assert.InDelta(t, 99.9, buy.TransactionCost, 1e-9)
	assert.InDelta(t, 0.1, buy.RemainingCash, 1e-9)

	snapshot := ledger.Snapshot()
	assert.Equal(t, "SPY", snapshot.Symbol)
	assert.Equal(t, int64(999), snapshot.Shares)
}

func TestBuyFailures(t *testing.T) {
	tests := []struct {
		name    string
		capital float64
		price   float64
	}{
		{name: "price exceeds capital", capital: 50, price: 100},
		{name: "costs eat all cash", capital: 0, price: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewLedger(tt.capital, 0.001)
			_, err := ledger.Buy("SPY", tt.price, tradeDate)
			assert.Error(t, err)
			assert.Empty(t, ledger.Transactions())
		})
	}
}

func TestSellNoPositionIsSuccess(t *testing.T) {
	ledger := NewLedger(100000, 0.001)

	sell := ledger.Sell(100, tradeDate)

	assert.Equal(t, SellNoPosition, sell.Status)
	assert.InDelta(t, 100000, sell.Cash, 1e-9)
	assert.Empty(t, ledger.Transactions())
}

func TestSellLiquidatesWithCosts(t *testing.T) {
	ledger := NewLedger(100000, 0.001)
	_, err := ledger.Buy("SPY", 100, tradeDate)
	require.NoError(t, err)

	sell := ledger.Sell(100, tradeDate.AddDate(0, 1, 0))

	assert.Equal(t, SellExecuted, sell.Status)
	assert.Equal(t, "SPY", sell.PreviousSymbol)
	// 999 shares at 100: gross 99900, cost 99.9, net 99800.1, plus the 0.1
	// residual cash from the buy.
	assert.InDelta(t, 99800.1, sell.NetProceeds, 1e-9)
	assert.InDelta(t, 99800.2, sell.Cash, 1e-9)

	snapshot := ledger.Snapshot()
	assert.Empty(t, snapshot.Symbol)
	assert.Zero(t, snapshot.Shares)
}

func TestRebalanceNoChangeWhenTargetHeld(t *testing.T) {
	ledger := NewLedger(100000, 0.001)
	_, err := ledger.Buy("SPY", 100, tradeDate)
	require.NoError(t, err)
	txCount := len(ledger.Transactions())

	result := ledger.Rebalance("SPY", map[string]float64{"SPY": 120}, tradeDate.AddDate(0, 1, 0))

	assert.Equal(t, RebalanceNoChange, result.Status)
	assert.True(t, result.Succeeded())
	assert.Len(t, ledger.Transactions(), txCount)
}

func TestRebalanceMissingTargetPriceDoesNotMutate(t *testing.T) {
	ledger := NewLedger(100000, 0.001)
	_, err := ledger.Buy("SPY", 100, tradeDate)
	require.NoError(t, err)
	before := ledger.Snapshot()

	result := ledger.Rebalance("QQQ", map[string]float64{"SPY": 100}, tradeDate.AddDate(0, 1, 0))

	assert.Equal(t, RebalanceFailed, result.Status)
	assert.False(t, result.Succeeded())
	assert.Contains(t, result.Reason, "QQQ")
	assert.Equal(t, before, ledger.Snapshot())
}

func TestRebalanceSwitchesPosition(t *testing.T) {
	ledger := NewLedger(100000, 0.001)
	_, err := ledger.Buy("SPY", 100, tradeDate)
	require.NoError(t, err)

	prices := map[string]float64{"SPY": 110, "QQQ": 50}
	result := ledger.Rebalance("QQQ", prices, tradeDate.AddDate(0, 1, 0))

	assert.Equal(t, RebalanceExecuted, result.Status)
	require.NotNil(t, result.Sell)
	require.NotNil(t, result.Buy)
	assert.Equal(t, "SPY", result.Sell.PreviousSymbol)
	assert.Equal(t, "QQQ", result.Buy.Symbol)

	snapshot := ledger.Snapshot()
	assert.Equal(t, "QQQ", snapshot.Symbol)
	assert.Positive(t, snapshot.Shares)
}

func TestRebalanceBuyFailureLeavesAllCash(t *testing.T) {
	ledger := NewLedger(100000, 0.001)
	_, err := ledger.Buy("SPY", 100, tradeDate)
	require.NoError(t, err)

	// Target is priced beyond the proceeds: sell leg lands, buy leg fails.
	prices := map[string]float64{"SPY": 100, "QQQ": 1e9}
	result := ledger.Rebalance("QQQ", prices, tradeDate.AddDate(0, 1, 0))

	assert.Equal(t, RebalanceFailed, result.Status)
	assert.Contains(t, result.Reason, "failed to buy QQQ")
	require.NotNil(t, result.Sell)
	assert.Nil(t, result.Buy)

	snapshot := ledger.Snapshot()
	assert.Empty(t, snapshot.Symbol)
	assert.Positive(t, snapshot.Cash)
}

func TestValuateKeepsLastValueWhenPriceMissing(t *testing.T) {
	ledger := NewLedger(100000, 0.001)
	_, err := ledger.Buy("SPY", 100, tradeDate)
	require.NoError(t, err)

	marked := ledger.Valuate(map[string]float64{"SPY": 110})
	assert.InDelta(t, 0.1+999*110, marked, 1e-9)

	stale := ledger.Valuate(map[string]float64{})
	assert.Equal(t, marked, stale)
}

func TestTransactionSummary(t *testing.T) {
	ledger := NewLedger(100000, 0.001)
	_, err := ledger.Buy("SPY", 100, tradeDate)
	require.NoError(t, err)
	ledger.Rebalance("QQQ", map[string]float64{"SPY": 105, "QQQ": 50}, tradeDate.AddDate(0, 1, 0))

	summary := ledger.TransactionSummary()

	assert.Equal(t, 3, summary.TotalTransactions)
	assert.Equal(t, 2, summary.BuyTransactions)
	assert.Equal(t, 1, summary.SellTransactions)
	assert.Positive(t, summary.TotalCosts)
	assert.InDelta(t, summary.TotalCosts/3, summary.AverageCost, 1e-9)

	for _, tx := range ledger.Transactions() {
		assert.Contains(t, []dto.TradeAction{dto.ActionBuy, dto.ActionSell}, tx.Action)
	}
}
