package backtest

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/replaybench/market"
	"github.com/rustyeddy/replaybench/metrics"
	"github.com/rustyeddy/replaybench/sim"
	"github.com/rustyeddy/replaybench/store"
)

// Jan 2..5 2024 are Tuesday through Friday.
func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	for i, close := range []float64{100, 105, 95, 110} {
		require.NoError(t, s.Add(market.Candle{
			Instrument: "AAPL",
			Time:       day(2 + i),
			Open:       close,
			High:       close,
			Low:        close,
			Close:      close,
			Volume:     1000,
		}))
	}
	return s
}

const scriptBody = `{"time":"2024-01-02","instrument":"AAPL","side":"buy","quantity":10}
{"time":"2024-01-03","instrument":"AAPL","side":"hold","quantity":0}

{"time":"2024-01-05T00:00:00Z","instrument":"AAPL","side":"sell","quantity":10}
`

func TestLoadScript(t *testing.T) {
	t.Parallel()

	s, err := LoadScript("demo", strings.NewReader(scriptBody))
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name())

	orders, err := s.Decide(context.Background(), sim.View{Time: day(2)})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, sim.Buy, orders[0].Side)
	assert.Equal(t, 10.0, orders[0].Quantity)

	// Hold lines and blank lines produce nothing.
	orders, err = s.Decide(context.Background(), sim.View{Time: day(3)})
	require.NoError(t, err)
	assert.Empty(t, orders)

	orders, err = s.Decide(context.Background(), sim.View{Time: day(5)})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, sim.Sell, orders[0].Side)
}

func TestLoadScriptBadLine(t *testing.T) {
	t.Parallel()

	_, err := LoadScript("bad", strings.NewReader(`{"time":"2024-01-02","instrument":"AAPL","side":"short","quantity":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	_, err = LoadScript("bad", strings.NewReader(`{"time":"yesterday","instrument":"AAPL","side":"buy","quantity":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad timestamp")
}

func TestRunAllBuyHoldSell(t *testing.T) {
	t.Parallel()

	script, err := LoadScript("buy-hold-sell", strings.NewReader(scriptBody))
	require.NoError(t, err)

	outs := RunAll(context.Background(), testStore(t), Options{
		Cash:    10000,
		Steps:   []time.Time{day(2), day(3), day(4), day(5)},
		Metrics: metrics.Options{PeriodsPerYear: metrics.PeriodsDailyEquity},
	}, Agent{Source: script})

	require.Len(t, outs, 1)
	require.NoError(t, outs[0].Err)

	res, rep := outs[0].Result, outs[0].Report
	assert.Equal(t, 2, res.Trades)
	assert.InDelta(t, 10100.0, res.Final.Cash, 1e-9)
	assert.InDelta(t, 0.01, rep.CumulativeReturn, 1e-12)
	assert.InDelta(t, 100.0/10050.0, rep.MaxDrawdown, 1e-12)
	assert.InDelta(t, 2.0/3.0, rep.WinRate, 1e-12)
	assert.Empty(t, rep.FlaggedCycles)
}

// Agents never share ledgers: an idle agent's equity is untouched by an
// active one running in the same batch.
func TestRunAllIsolatesAgents(t *testing.T) {
	t.Parallel()

	active, err := LoadScript("active", strings.NewReader(scriptBody))
	require.NoError(t, err)
	idle := NewScript("idle")

	outs := RunAll(context.Background(), testStore(t), Options{
		Cash:    10000,
		Steps:   []time.Time{day(2), day(3), day(4), day(5)},
		Metrics: metrics.Options{PeriodsPerYear: metrics.PeriodsDailyEquity},
	}, Agent{Source: active}, Agent{Source: idle})

	require.Len(t, outs, 2)
	require.NoError(t, outs[0].Err)
	require.NoError(t, outs[1].Err)

	assert.Equal(t, "active", outs[0].Result.Source)
	assert.Equal(t, "idle", outs[1].Result.Source)
	assert.InDelta(t, 10100.0, outs[0].Result.Final.TotalValue, 1e-9)
	assert.InDelta(t, 10000.0, outs[1].Result.Final.TotalValue, 1e-9)
	assert.True(t, math.IsNaN(outs[1].Report.Sharpe), "flat equity has no Sharpe")
}

func TestRunAllMissingSource(t *testing.T) {
	t.Parallel()

	outs := RunAll(context.Background(), testStore(t), Options{Cash: 1000, Steps: []time.Time{day(2)}}, Agent{})
	require.Len(t, outs, 1)
	assert.Error(t, outs[0].Err)
}

func TestPrintResult(t *testing.T) {
	t.Parallel()

	script, err := LoadScript("pr", strings.NewReader(scriptBody))
	require.NoError(t, err)

	outs := RunAll(context.Background(), testStore(t), Options{
		Cash:    10000,
		Steps:   []time.Time{day(2), day(3), day(4), day(5)},
		Metrics: metrics.Options{PeriodsPerYear: metrics.PeriodsDailyEquity},
	}, Agent{Source: script})
	require.NoError(t, outs[0].Err)

	var buf bytes.Buffer
	PrintResult(&buf, outs[0].Result, outs[0].Report)
	out := buf.String()
	assert.Contains(t, out, "Run: pr")
	assert.Contains(t, out, "Cumulative Return:")
	assert.Contains(t, out, "1.00%")
}