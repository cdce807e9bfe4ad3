package backtest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rustyeddy/replaybench/sim"
	"github.com/rustyeddy/replaybench/store"
)

// Script is a deterministic decision source: a fixed schedule of orders keyed
// by step time. Steps with no scheduled order are holds. It is the replay
// counterpart of a live agent, useful for regression runs and for replaying a
// decision log captured from a real model.
type Script struct {
	name   string
	orders map[int64][]sim.Order
}

func NewScript(name string) *Script {
	return &Script{name: name, orders: make(map[int64][]sim.Order)}
}

func (s *Script) Name() string { return s.name }

// Add schedules an order for its own timestamp's step.
func (s *Script) Add(o sim.Order) {
	k := o.Time.UnixNano()
	s.orders[k] = append(s.orders[k], o)
}

func (s *Script) Decide(_ context.Context, v sim.View) ([]sim.Order, error) {
	return s.orders[v.Time.UnixNano()], nil
}

// scriptLine is one decision in a script file. Side "hold" (or empty) means
// no order for that step and is dropped at load time.
type scriptLine struct {
	Time       string  `json:"time"`
	Instrument string  `json:"instrument"`
	Side       string  `json:"side"`
	Quantity   float64 `json:"quantity"`
}

// LoadScript reads a JSONL decision log, one decision per line. Timestamps
// accept RFC3339 or a bare date.
func LoadScript(name string, r io.Reader) (*Script, error) {
	s := NewScript(name)
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var line scriptLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("script %s line %d: %w", name, n, err)
		}
		if line.Side == "" || strings.EqualFold(line.Side, "hold") {
			continue
		}
		side, err := sim.SideFromString(line.Side)
		if err != nil {
			return nil, fmt.Errorf("script %s line %d: %w", name, n, err)
		}
		at, err := parseScriptTime(line.Time)
		if err != nil {
			return nil, fmt.Errorf("script %s line %d: %w", name, n, err)
		}
		s.Add(sim.Order{
			Instrument: line.Instrument,
			Side:       side,
			Quantity:   line.Quantity,
			Time:       at,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	return s, nil
}

// LoadScriptFile loads a script from a path, transparently decompressing
// .gz and .xz files. The script name is the path.
func LoadScriptFile(path string) (*Script, error) {
	r, err := store.OpenDataset(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return LoadScript(path, r)
}

func parseScriptTime(stamp string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", stamp)
}
