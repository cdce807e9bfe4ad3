package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/replaybench/market"
	"github.com/rustyeddy/replaybench/store"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func flatBar(inst string, t time.Time, px float64) market.Candle {
	return market.Candle{Instrument: inst, Time: t, Open: px, High: px, Low: px, Close: px}
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	// 2024-01-02..05 are Tuesday..Friday.
	for i, px := range []float64{100, 105, 95, 110} {
		require.NoError(t, s.Add(flatBar("AAPL", day(2+i), px)))
	}
	require.NoError(t, s.Add(flatBar("MSFT", day(3), 400)))
	return s
}

func TestGateVisibleNeverLeaksFuture(t *testing.T) {
	t.Parallel()

	g := NewGate(testStore(t), time.Time{})

	for d := 1; d <= 5; d++ {
		cutoff := day(d)
		p, err := g.Visible(cutoff)
		require.NoError(t, err)
		for _, inst := range p.Instruments() {
			c, ok := p.Price(inst)
			require.True(t, ok)
			assert.False(t, c.Time.After(cutoff),
				"%s bar %s visible at %s", inst, c.Time, cutoff)
		}
	}
}

func TestGateVisibleLatestWins(t *testing.T) {
	t.Parallel()

	g := NewGate(testStore(t), time.Time{})

	p, err := g.Visible(day(4))
	require.NoError(t, err)

	c, ok := p.Price("AAPL")
	require.True(t, ok)
	assert.Equal(t, 95.0, c.Close)

	px, ok := p.Close("MSFT")
	require.True(t, ok)
	assert.Equal(t, 400.0, px)
}

func TestGateBeyondHorizonIsLookAhead(t *testing.T) {
	t.Parallel()

	g := NewGate(testStore(t), day(4))

	_, err := g.Visible(day(5))
	assert.ErrorIs(t, err, ErrLookAhead)

	_, err = g.Visible(day(4))
	assert.NoError(t, err)
}

func TestGateDefaultHorizonIsEndOfData(t *testing.T) {
	t.Parallel()

	g := NewGate(testStore(t), time.Time{})
	assert.True(t, g.Horizon().Equal(day(5)))
}

func TestGateRequiredInstrumentMissing(t *testing.T) {
	t.Parallel()

	g := NewGate(testStore(t), time.Time{})

	// MSFT has no bar at or before Jan 2.
	_, err := g.Visible(day(2), "MSFT")
	assert.ErrorIs(t, err, ErrMissingPrice)

	// An unrequired absent instrument is a valid empty result.
	p, err := g.Visible(day(2))
	require.NoError(t, err)
	_, ok := p.Price("MSFT")
	assert.False(t, ok)
}
