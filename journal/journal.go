// journal/journal.go
package journal

import "time"

// TradeRecord is one executed fill: the canonical, append-only audit entry.
type TradeRecord struct {
	TradeID    string
	Instrument string
	Side       string
	Quantity   float64
	FillPrice  float64
	Time       time.Time
	CashDelta  float64
	RealizedPL float64
}

// RejectionRecord is one rejected order, kept alongside trades so the audit
// trail shows every decision, not just the fills.
type RejectionRecord struct {
	Time       time.Time
	Instrument string
	Side       string
	Quantity   float64
	Reason     string
	Detail     string
}

// EquitySnapshot is the portfolio summary recorded once per decision cycle.
type EquitySnapshot struct {
	Time   time.Time
	Cash   float64
	Equity float64
}

// Cycle status values.
const (
	CycleOK       = "ok"
	CycleConflict = "conflict"
)

// CycleRecord marks the outcome of one decision cycle. Conflicted cycles are
// surfaced by the metrics report so downstream analysis can exclude them.
type CycleRecord struct {
	Time       time.Time
	Status     string
	Trades     int
	Rejections int
	Detail     string
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordRejection(RejectionRecord) error
	RecordEquity(EquitySnapshot) error
	RecordCycle(CycleRecord) error
	Close() error
}

// Nop discards everything. Useful for tests and dry runs.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error         { return nil }
func (Nop) RecordRejection(RejectionRecord) error { return nil }
func (Nop) RecordEquity(EquitySnapshot) error     { return nil }
func (Nop) RecordCycle(CycleRecord) error         { return nil }
func (Nop) Close() error                          { return nil }
