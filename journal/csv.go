// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes trades and equity to two flat files for spreadsheet use.
// Rejections and cycle outcomes are folded into the trades file with an
// empty trade_id so nothing is silently dropped.
type CSV struct {
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"trade_id", "time", "instrument", "side", "quantity", "fill_price", "cash_delta", "realized_pl", "note"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "cash", "equity"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{trades: tw, equity: ew, tf: tf, ef: ef}, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Time.Format(time.RFC3339),
		t.Instrument,
		t.Side,
		f(t.Quantity),
		f(t.FillPrice),
		f(t.CashDelta),
		f(t.RealizedPL),
		"",
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordRejection(r RejectionRecord) error {
	err := j.trades.Write([]string{
		"",
		r.Time.Format(time.RFC3339),
		r.Instrument,
		r.Side,
		f(r.Quantity),
		"", "", "",
		"rejected:" + r.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Cash),
		f(e.Equity),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) RecordCycle(c CycleRecord) error {
	if c.Status == CycleOK {
		return nil
	}
	err := j.trades.Write([]string{
		"",
		c.Time.Format(time.RFC3339),
		"", "", "", "", "", "",
		"cycle:" + c.Status,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
