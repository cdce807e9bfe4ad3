package sim

import (
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/replaybench/market"
	"github.com/rustyeddy/replaybench/store"
)

// Gate is the temporal gate: the only way the rest of the core reads the
// price store. Given a simulated cutoff it returns the latest bar per
// instrument with timestamp <= cutoff, and nothing else. It is a pure
// function of the store and the cutoff.
type Gate struct {
	store   *store.Store
	horizon time.Time
}

// NewGate wraps a price store with a simulation horizon. A zero horizon
// means "end of data".
func NewGate(s *store.Store, horizon time.Time) *Gate {
	if horizon.IsZero() {
		if last, ok := s.Last(); ok {
			horizon = last
		}
	}
	return &Gate{store: s, horizon: horizon}
}

// Horizon returns the configured simulation horizon.
func (g *Gate) Horizon() time.Time { return g.horizon }

// Prices is the read-only snapshot of gated prices as of a cutoff.
type Prices struct {
	Time   time.Time
	byInst map[string]market.Candle
}

// Price returns the latest visible bar for an instrument. A false return is
// "no data yet", which for an idle instrument is a valid empty result.
func (p Prices) Price(instrument string) (market.Candle, bool) {
	c, ok := p.byInst[instrument]
	return c, ok
}

// Close returns the latest visible close for an instrument.
func (p Prices) Close(instrument string) (float64, bool) {
	c, ok := p.byInst[instrument]
	return c.Close, ok
}

// Instruments returns the instruments with visible data, sorted.
func (p Prices) Instruments() []string {
	out := make([]string, 0, len(p.byInst))
	for k := range p.byInst {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Visible returns the price snapshot as of cutoff. Requesting a cutoff past
// the horizon is a look-ahead violation. Any instrument listed as required
// must have data at or before the cutoff, otherwise the request fails with
// ErrMissingPrice.
func (g *Gate) Visible(cutoff time.Time, required ...string) (Prices, error) {
	if cutoff.After(g.horizon) {
		return Prices{}, fmt.Errorf("%w: cutoff %s beyond horizon %s",
			ErrLookAhead, cutoff.Format(time.RFC3339), g.horizon.Format(time.RFC3339))
	}

	p := Prices{Time: cutoff, byInst: make(map[string]market.Candle)}
	for _, inst := range g.store.Instruments() {
		if c, ok := g.store.Latest(inst, cutoff); ok {
			p.byInst[inst] = c
		}
	}

	for _, inst := range required {
		if _, ok := p.byInst[inst]; !ok {
			return Prices{}, fmt.Errorf("%w: no data for %s at or before %s",
				ErrMissingPrice, inst, cutoff.Format(time.RFC3339))
		}
	}
	return p, nil
}
