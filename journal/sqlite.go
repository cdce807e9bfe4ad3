package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, instrument, side, quantity, fill_price, time, cash_delta, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Instrument, t.Side, t.Quantity,
		t.FillPrice, t.Time, t.CashDelta, t.RealizedPL,
	)
	return err
}

func (j *SQLite) RecordRejection(r RejectionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO rejections
		(time, instrument, side, quantity, reason, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Time, r.Instrument, r.Side, r.Quantity, r.Reason, r.Detail,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, equity)
		VALUES (?, ?, ?)`,
		e.Time, e.Cash, e.Equity,
	)
	return err
}

func (j *SQLite) RecordCycle(c CycleRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO cycles (time, status, trades, rejections, detail)
		VALUES (?, ?, ?, ?, ?)`,
		c.Time, c.Status, c.Trades, c.Rejections, c.Detail,
	)
	return err
}

// ListEquity returns the recorded equity series in time order.
func (j *SQLite) ListEquity() ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`SELECT time, cash, equity FROM equity ORDER BY time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.Time, &e.Cash, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListTrades returns all trades in time order.
func (j *SQLite) ListTrades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, instrument, side, quantity, fill_price, time, cash_delta, realized_pl
		FROM trades ORDER BY time, trade_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.TradeID, &t.Instrument, &t.Side, &t.Quantity,
			&t.FillPrice, &t.Time, &t.CashDelta, &t.RealizedPL); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListFlaggedCycles returns the timestamps of cycles that did not complete
// cleanly.
func (j *SQLite) ListFlaggedCycles() ([]time.Time, error) {
	rows, err := j.db.Query(`SELECT time FROM cycles WHERE status != ? ORDER BY time`, CycleOK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
