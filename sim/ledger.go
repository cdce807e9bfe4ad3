package sim

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/replaybench/journal"
	"github.com/rustyeddy/replaybench/market"
)

// quantities and cash compare within this tolerance
const epsilon = 1e-9

// Lot is one acquisition: quantity bought at a point in time. Lots drive the
// T+1 lock-up check and are consumed FIFO on sells.
type Lot struct {
	Quantity float64
	Time     time.Time
}

// Position is the held quantity of one instrument plus its weighted-average
// cost basis and acquisition lots.
type Position struct {
	Instrument string
	Quantity   float64
	AvgCost    float64
	Lots       []Lot
}

// Sellable returns the quantity that may be sold at t under the market's
// settlement cycle: for T+1, lots acquired in the same session day as t are
// locked; for T+0 the full quantity is sellable.
func (p Position) Sellable(prof market.Profile, t time.Time) float64 {
	if prof.Settlement == market.T0 {
		return p.Quantity
	}
	day := prof.SessionDay(t)
	var locked float64
	for _, lot := range p.Lots {
		if prof.SessionDay(lot.Time).Equal(day) {
			locked += lot.Quantity
		}
	}
	return p.Quantity - locked
}

func (p Position) clone() Position {
	q := p
	q.Lots = append([]Lot(nil), p.Lots...)
	return q
}

// Snapshot is the derived portfolio state at a decision point. Snapshots are
// never mutated after creation; the ledger appends them to its history.
type Snapshot struct {
	Time       time.Time
	Cash       float64
	Positions  map[string]Position
	TotalValue float64
}

// Ledger is the authoritative portfolio state: cash plus open positions.
// All fields are unexported; the execution engine's apply path is the only
// mutator, and every reader gets copies.
type Ledger struct {
	cash      float64
	positions map[string]*Position
	history   []Snapshot
}

func NewLedger(initialCash float64) *Ledger {
	return &Ledger{
		cash:      initialCash,
		positions: make(map[string]*Position),
	}
}

// Cash returns available cash.
func (l *Ledger) Cash() float64 { return l.cash }

// Position returns a copy of the position for an instrument.
func (l *Ledger) Position(instrument string) (Position, bool) {
	p, ok := l.positions[instrument]
	if !ok {
		return Position{}, false
	}
	return p.clone(), true
}

// view builds a snapshot without recording it. Valuation of open positions
// uses the gate's latest visible price, never anything newer.
func (l *Ledger) view(at time.Time, prices Prices) Snapshot {
	snap := Snapshot{
		Time:      at,
		Cash:      l.cash,
		Positions: make(map[string]Position, len(l.positions)),
	}
	total := l.cash
	keys := make([]string, 0, len(l.positions))
	for k := range l.positions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pos := l.positions[k].clone()
		snap.Positions[k] = pos
		if c, ok := prices.Price(k); ok {
			total += pos.Quantity * c.Close
		}
		// A held instrument with no visible price keeps its cash-basis out
		// of the total for this step; the next priced step corrects it.
	}
	snap.TotalValue = total
	return snap
}

// Snapshot records and returns the portfolio state at a decision point.
func (l *Ledger) Snapshot(at time.Time, prices Prices) Snapshot {
	snap := l.view(at, prices)
	l.history = append(l.history, snap)
	return snap
}

// History returns the recorded snapshot series, oldest first.
func (l *Ledger) History() []Snapshot {
	return append([]Snapshot(nil), l.history...)
}

// apply commits one trade record to the ledger. It re-checks every invariant
// against current state before mutating, so a failure leaves the ledger
// untouched; a violation here means the validated order no longer matches
// reality and surfaces as an execution conflict.
func (l *Ledger) apply(tr journal.TradeRecord, prof market.Profile) error {
	switch tr.Side {
	case Buy.String():
		cost := tr.FillPrice * tr.Quantity
		if l.cash-cost < -epsilon {
			return fmt.Errorf("%w: buy %s needs %.2f cash, have %.2f",
				ErrExecutionConflict, tr.Instrument, cost, l.cash)
		}
		pos, ok := l.positions[tr.Instrument]
		if !ok {
			pos = &Position{Instrument: tr.Instrument}
			l.positions[tr.Instrument] = pos
		}
		newQty := pos.Quantity + tr.Quantity
		pos.AvgCost = (pos.AvgCost*pos.Quantity + cost) / newQty
		pos.Quantity = newQty
		pos.Lots = append(pos.Lots, Lot{Quantity: tr.Quantity, Time: tr.Time})
		l.cash += tr.CashDelta

	case Sell.String():
		pos, ok := l.positions[tr.Instrument]
		if !ok || pos.Sellable(prof, tr.Time) < tr.Quantity-epsilon {
			return fmt.Errorf("%w: sell %s %.4f exceeds sellable quantity",
				ErrExecutionConflict, tr.Instrument, tr.Quantity)
		}
		consumeLots(pos, tr.Quantity)
		pos.Quantity -= tr.Quantity
		if math.Abs(pos.Quantity) < epsilon {
			delete(l.positions, tr.Instrument)
		}
		l.cash += tr.CashDelta

	default:
		return fmt.Errorf("%w: unknown side %q", ErrExecutionConflict, tr.Side)
	}
	return nil
}

// consumeLots removes quantity FIFO. Oldest lots are always the settled
// ones, so T+1 locked lots survive.
func consumeLots(pos *Position, qty float64) {
	remaining := qty
	for remaining > epsilon && len(pos.Lots) > 0 {
		lot := &pos.Lots[0]
		if lot.Quantity > remaining+epsilon {
			lot.Quantity -= remaining
			remaining = 0
			break
		}
		remaining -= lot.Quantity
		pos.Lots = pos.Lots[1:]
	}
}
