// journal/jsonl.go
//
// Line-delimited JSON journal: one record per line, every line tagged with
// its kind. This is the persisted trade log external reporting tools consume.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	kindTrade     = "trade"
	kindRejection = "rejection"
	kindEquity    = "equity"
	kindCycle     = "cycle"
)

type jsonlLine struct {
	Kind string    `json:"kind"`
	Time time.Time `json:"time"`

	TradeID    string  `json:"trade_id,omitempty"`
	Instrument string  `json:"instrument,omitempty"`
	Side       string  `json:"side,omitempty"`
	Quantity   float64 `json:"quantity,omitempty"`
	FillPrice  float64 `json:"fill_price,omitempty"`
	CashDelta  float64 `json:"cash_delta,omitempty"`
	RealizedPL float64 `json:"realized_pl,omitempty"`

	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`

	Cash   float64 `json:"cash,omitempty"`
	Equity float64 `json:"equity,omitempty"`

	Status     string `json:"status,omitempty"`
	Trades     int    `json:"trades,omitempty"`
	Rejections int    `json:"rejections,omitempty"`
}

type JSONL struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

func NewJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONL{f: f, w: bufio.NewWriter(f)}, nil
}

func (j *JSONL) write(line jsonlLine) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	b, err := json.Marshal(line)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(append(b, '\n')); err != nil {
		return err
	}
	// Flush per record: the log is an audit trail, partial buffers lose data.
	return j.w.Flush()
}

func (j *JSONL) RecordTrade(t TradeRecord) error {
	return j.write(jsonlLine{
		Kind:       kindTrade,
		Time:       t.Time,
		TradeID:    t.TradeID,
		Instrument: t.Instrument,
		Side:       t.Side,
		Quantity:   t.Quantity,
		FillPrice:  t.FillPrice,
		CashDelta:  t.CashDelta,
		RealizedPL: t.RealizedPL,
	})
}

func (j *JSONL) RecordRejection(r RejectionRecord) error {
	return j.write(jsonlLine{
		Kind:       kindRejection,
		Time:       r.Time,
		Instrument: r.Instrument,
		Side:       r.Side,
		Quantity:   r.Quantity,
		Reason:     r.Reason,
		Detail:     r.Detail,
	})
}

func (j *JSONL) RecordEquity(e EquitySnapshot) error {
	return j.write(jsonlLine{
		Kind:   kindEquity,
		Time:   e.Time,
		Cash:   e.Cash,
		Equity: e.Equity,
	})
}

func (j *JSONL) RecordCycle(c CycleRecord) error {
	return j.write(jsonlLine{
		Kind:       kindCycle,
		Time:       c.Time,
		Status:     c.Status,
		Trades:     c.Trades,
		Rejections: c.Rejections,
		Detail:     c.Detail,
	})
}

func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.w.Flush(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}

// Records is a fully parsed JSONL journal.
type Records struct {
	Trades     []TradeRecord
	Rejections []RejectionRecord
	Equity     []EquitySnapshot
	Cycles     []CycleRecord
}

// FlaggedCycles returns the timestamps of cycles that did not complete
// cleanly.
func (r Records) FlaggedCycles() []time.Time {
	var out []time.Time
	for _, c := range r.Cycles {
		if c.Status != CycleOK {
			out = append(out, c.Time)
		}
	}
	return out
}

// ReadJSONL parses a journal written by JSONL.
func ReadJSONL(r io.Reader) (Records, error) {
	var out Records

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	n := 0
	for sc.Scan() {
		n++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var line jsonlLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return Records{}, fmt.Errorf("journal line %d: %w", n, err)
		}
		switch line.Kind {
		case kindTrade:
			out.Trades = append(out.Trades, TradeRecord{
				TradeID:    line.TradeID,
				Instrument: line.Instrument,
				Side:       line.Side,
				Quantity:   line.Quantity,
				FillPrice:  line.FillPrice,
				Time:       line.Time,
				CashDelta:  line.CashDelta,
				RealizedPL: line.RealizedPL,
			})
		case kindRejection:
			out.Rejections = append(out.Rejections, RejectionRecord{
				Time:       line.Time,
				Instrument: line.Instrument,
				Side:       line.Side,
				Quantity:   line.Quantity,
				Reason:     line.Reason,
				Detail:     line.Detail,
			})
		case kindEquity:
			out.Equity = append(out.Equity, EquitySnapshot{
				Time:   line.Time,
				Cash:   line.Cash,
				Equity: line.Equity,
			})
		case kindCycle:
			out.Cycles = append(out.Cycles, CycleRecord{
				Time:       line.Time,
				Status:     line.Status,
				Trades:     line.Trades,
				Rejections: line.Rejections,
				Detail:     line.Detail,
			})
		default:
			return Records{}, fmt.Errorf("journal line %d: unknown kind %q", n, line.Kind)
		}
	}
	if err := sc.Err(); err != nil {
		return Records{}, err
	}
	return out, nil
}

// ReadJSONLFile parses a journal file.
func ReadJSONLFile(path string) (Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return Records{}, err
	}
	defer f.Close()
	return ReadJSONL(f)
}
