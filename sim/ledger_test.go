package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/replaybench/journal"
	"github.com/rustyeddy/replaybench/market"
)

func usProfile() market.Profile { return market.Markets["us"] }
func cnProfile() market.Profile { return market.Markets["cn"] }

func buyRecord(inst string, qty, px float64, t time.Time) journal.TradeRecord {
	return journal.TradeRecord{
		TradeID: "T-test", Instrument: inst, Side: "buy",
		Quantity: qty, FillPrice: px, Time: t, CashDelta: -px * qty,
	}
}

func sellRecord(inst string, qty, px float64, t time.Time) journal.TradeRecord {
	return journal.TradeRecord{
		TradeID: "T-test", Instrument: inst, Side: "sell",
		Quantity: qty, FillPrice: px, Time: t, CashDelta: px * qty,
	}
}

func TestLedgerApplyBuyAveragesCost(t *testing.T) {
	t.Parallel()

	l := NewLedger(10000)
	require.NoError(t, l.apply(buyRecord("AAPL", 10, 100, day(2)), usProfile()))
	require.NoError(t, l.apply(buyRecord("AAPL", 10, 110, day(3)), usProfile()))

	pos, ok := l.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, 20.0, pos.Quantity)
	assert.InDelta(t, 105.0, pos.AvgCost, 1e-12)
	assert.Len(t, pos.Lots, 2)
	assert.InDelta(t, 10000-1000-1100, l.Cash(), 1e-12)
}

func TestLedgerApplySellKeepsCostBasis(t *testing.T) {
	t.Parallel()

	l := NewLedger(10000)
	require.NoError(t, l.apply(buyRecord("AAPL", 20, 100, day(2)), usProfile()))
	require.NoError(t, l.apply(sellRecord("AAPL", 10, 110, day(3)), usProfile()))

	pos, ok := l.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, 10.0, pos.Quantity)
	assert.Equal(t, 100.0, pos.AvgCost)
	assert.InDelta(t, 10000-2000+1100, l.Cash(), 1e-12)
}

func TestLedgerSellFullPositionRemovesIt(t *testing.T) {
	t.Parallel()

	l := NewLedger(10000)
	require.NoError(t, l.apply(buyRecord("AAPL", 10, 100, day(2)), usProfile()))
	require.NoError(t, l.apply(sellRecord("AAPL", 10, 110, day(3)), usProfile()))

	_, ok := l.Position("AAPL")
	assert.False(t, ok)
}

func TestLedgerBuyOverspendIsConflict(t *testing.T) {
	t.Parallel()

	l := NewLedger(500)
	err := l.apply(buyRecord("AAPL", 10, 100, day(2)), usProfile())
	assert.ErrorIs(t, err, ErrExecutionConflict)
	assert.Equal(t, 500.0, l.Cash(), "failed apply must not mutate")
	_, ok := l.Position("AAPL")
	assert.False(t, ok)
}

func TestLedgerOversellIsConflict(t *testing.T) {
	t.Parallel()

	l := NewLedger(10000)
	require.NoError(t, l.apply(buyRecord("AAPL", 10, 100, day(2)), usProfile()))

	err := l.apply(sellRecord("AAPL", 20, 110, day(3)), usProfile())
	assert.ErrorIs(t, err, ErrExecutionConflict)

	pos, _ := l.Position("AAPL")
	assert.Equal(t, 10.0, pos.Quantity)
}

func TestSellableT1LocksSameSessionLots(t *testing.T) {
	t.Parallel()

	cn := cnProfile()
	l := NewLedger(1_000_000)
	require.NoError(t, l.apply(buyRecord("600519.SH", 200, 1500, day(2)), cn))
	require.NoError(t, l.apply(buyRecord("600519.SH", 100, 1510, day(3)), cn))

	pos, ok := l.Position("600519.SH")
	require.True(t, ok)

	// On day 3 only the day-2 lot has settled.
	assert.Equal(t, 200.0, pos.Sellable(cn, day(3)))
	// On day 4 everything has.
	assert.Equal(t, 300.0, pos.Sellable(cn, day(4)))
}

func TestSellableT0IsFullQuantity(t *testing.T) {
	t.Parallel()

	l := NewLedger(10000)
	require.NoError(t, l.apply(buyRecord("AAPL", 10, 100, day(2)), usProfile()))
	pos, _ := l.Position("AAPL")
	assert.Equal(t, 10.0, pos.Sellable(usProfile(), day(2)))
}

func TestConsumeLotsFIFO(t *testing.T) {
	t.Parallel()

	cn := cnProfile()
	l := NewLedger(1_000_000)
	require.NoError(t, l.apply(buyRecord("600519.SH", 200, 1500, day(2)), cn))
	require.NoError(t, l.apply(buyRecord("600519.SH", 100, 1510, day(3)), cn))

	// Selling 100 on day 3 consumes the settled day-2 lot first, leaving
	// 100 settled + 100 locked.
	require.NoError(t, l.apply(sellRecord("600519.SH", 100, 1520, day(3)), cn))

	pos, _ := l.Position("600519.SH")
	assert.Equal(t, 200.0, pos.Quantity)
	assert.Equal(t, 100.0, pos.Sellable(cn, day(3)))
	require.Len(t, pos.Lots, 2)
	assert.Equal(t, 100.0, pos.Lots[0].Quantity)
	assert.True(t, pos.Lots[0].Time.Equal(day(2)))
}

func TestSnapshotValuesAtGatedPrices(t *testing.T) {
	t.Parallel()

	g := NewGate(testStore(t), time.Time{})
	l := NewLedger(10000)
	require.NoError(t, l.apply(buyRecord("AAPL", 10, 100, day(2)), usProfile()))

	prices, err := g.Visible(day(3))
	require.NoError(t, err)

	snap := l.Snapshot(day(3), prices)
	assert.InDelta(t, 9000+10*105, snap.TotalValue, 1e-12)
	assert.Equal(t, 9000.0, snap.Cash)
	require.Len(t, l.History(), 1)
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	g := NewGate(testStore(t), time.Time{})
	l := NewLedger(10000)
	require.NoError(t, l.apply(buyRecord("AAPL", 10, 100, day(2)), usProfile()))

	prices, err := g.Visible(day(2))
	require.NoError(t, err)
	snap := l.Snapshot(day(2), prices)

	// Mutating the snapshot must not touch ledger state.
	p := snap.Positions["AAPL"]
	p.Quantity = 999
	p.Lots[0].Quantity = 999
	snap.Positions["AAPL"] = p

	pos, _ := l.Position("AAPL")
	assert.Equal(t, 10.0, pos.Quantity)
	assert.Equal(t, 10.0, pos.Lots[0].Quantity)
}
