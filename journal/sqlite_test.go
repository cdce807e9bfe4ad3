package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','rejections','equity','cycles')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["rejections"])
	assert.True(t, found["equity"])
	assert.True(t, found["cycles"])
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		Instrument: "AAPL",
		Side:       "buy",
		Quantity:   10,
		FillPrice:  100,
		Time:       ts,
		CashDelta:  -1000,
	}))
	require.NoError(t, j.RecordRejection(RejectionRecord{
		Time:       ts,
		Instrument: "600519.SH",
		Side:       "sell",
		Quantity:   100,
		Reason:     "InsufficientSettledQuantity",
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: ts, Cash: 9000, Equity: 10000}))
	require.NoError(t, j.RecordCycle(CycleRecord{Time: ts, Status: CycleOK, Trades: 1, Rejections: 1}))
	require.NoError(t, j.RecordCycle(CycleRecord{
		Time:   ts.AddDate(0, 0, 1),
		Status: CycleConflict,
		Detail: "order already executed",
	}))

	trades, err := j.ListTrades()
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "T1", trades[0].TradeID)
	assert.Equal(t, -1000.0, trades[0].CashDelta)
	assert.True(t, trades[0].Time.Equal(ts))

	eq, err := j.ListEquity()
	require.NoError(t, err)
	require.Len(t, eq, 1)
	assert.Equal(t, 10000.0, eq[0].Equity)

	flagged, err := j.ListFlaggedCycles()
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.True(t, flagged[0].Equal(ts.AddDate(0, 0, 1)))
}
