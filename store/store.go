// Package store holds the normalized, time-indexed candle series the
// simulation replays. Series are append-only and strictly ordered per
// instrument; everything downstream of ingestion treats them as immutable.
package store

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rustyeddy/replaybench/market"
)

// ErrCorrupt marks price-store integrity failures: malformed bars, duplicate
// or out-of-order timestamps. Corruption is fatal for a benchmark run since
// it would silently invalidate results.
var ErrCorrupt = errors.New("store: corrupt price data")

// Store is the price store: one sorted candle series per instrument.
type Store struct {
	series map[string][]market.Candle
}

func New() *Store {
	return &Store{series: make(map[string][]market.Candle)}
}

// Add appends a candle to its instrument's series. Bars must arrive in
// strictly increasing time order per instrument; loaders sort before adding.
func (s *Store) Add(c market.Candle) error {
	if c.Instrument == "" || c.Time.IsZero() {
		return fmt.Errorf("%w: bar missing instrument or time", ErrCorrupt)
	}
	if !c.Valid() {
		return fmt.Errorf("%w: invalid bar for %s at %s", ErrCorrupt, c.Instrument, c.Time.Format(time.RFC3339))
	}

	ser := s.series[c.Instrument]
	if n := len(ser); n > 0 && !ser[n-1].Time.Before(c.Time) {
		return fmt.Errorf("%w: %s bar at %s not after %s", ErrCorrupt,
			c.Instrument, c.Time.Format(time.RFC3339), ser[n-1].Time.Format(time.RFC3339))
	}

	s.series[c.Instrument] = append(ser, c)
	return nil
}

// AddAll sorts the batch by time per instrument and adds every bar.
func (s *Store) AddAll(bars []market.Candle) error {
	byInst := make(map[string][]market.Candle)
	for _, c := range bars {
		byInst[c.Instrument] = append(byInst[c.Instrument], c)
	}
	for _, ser := range byInst {
		sort.Slice(ser, func(i, j int) bool { return ser[i].Time.Before(ser[j].Time) })
		for _, c := range ser {
			if err := s.Add(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Instruments returns the instrument IDs present, sorted.
func (s *Store) Instruments() []string {
	out := make([]string, 0, len(s.series))
	for k := range s.series {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of bars held for an instrument.
func (s *Store) Len(instrument string) int {
	return len(s.series[instrument])
}

// At returns the bar with exactly the given timestamp.
func (s *Store) At(instrument string, t time.Time) (market.Candle, bool) {
	ser := s.series[instrument]
	i := sort.Search(len(ser), func(i int) bool { return !ser[i].Time.Before(t) })
	if i < len(ser) && ser[i].Time.Equal(t) {
		return ser[i], true
	}
	return market.Candle{}, false
}

// Latest returns the most recent bar with Time <= cutoff. This is the only
// read path the temporal gate uses, so no bar past the cutoff can leak out.
func (s *Store) Latest(instrument string, cutoff time.Time) (market.Candle, bool) {
	ser := s.series[instrument]
	i := sort.Search(len(ser), func(i int) bool { return ser[i].Time.After(cutoff) })
	if i == 0 {
		return market.Candle{}, false
	}
	return ser[i-1], true
}

// Times returns the union of bar timestamps across all instruments within
// [from, to], sorted ascending. The runner steps the simulation over these.
func (s *Store) Times(from, to time.Time) []time.Time {
	seen := make(map[time.Time]bool)
	for _, ser := range s.series {
		for _, c := range ser {
			if !from.IsZero() && c.Time.Before(from) {
				continue
			}
			if !to.IsZero() && c.Time.After(to) {
				continue
			}
			seen[c.Time] = true
		}
	}
	out := make([]time.Time, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// First returns the earliest bar time across all instruments.
func (s *Store) First() (time.Time, bool) {
	var first time.Time
	for _, ser := range s.series {
		if len(ser) == 0 {
			continue
		}
		if first.IsZero() || ser[0].Time.Before(first) {
			first = ser[0].Time
		}
	}
	return first, !first.IsZero()
}

// Last returns the latest bar time across all instruments. Runs use it as
// the default simulation horizon.
func (s *Store) Last() (time.Time, bool) {
	var last time.Time
	for _, ser := range s.series {
		if n := len(ser); n > 0 && ser[n-1].Time.After(last) {
			last = ser[n-1].Time
		}
	}
	return last, !last.IsZero()
}
