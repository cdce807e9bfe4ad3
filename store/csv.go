package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/replaybench/market"
)

// LoadCSV reads canonical candle rows:
//
//	time,instrument,open,high,low,close[,volume]
//
// where time is RFC3339. A header row ("time,...") is allowed; empty and
// short rows are skipped.
func (s *Store) LoadCSV(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []market.Candle
	sawFirst := false
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read candle csv: %w", err)
		}
		if !sawFirst {
			sawFirst = true
			if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}
		c, ok, err := parseCandleRow(row)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if !ok {
			continue
		}
		bars = append(bars, c)
	}
	return s.AddAll(bars)
}

// LoadCSVFile loads a candle CSV file, decompressing .gz/.xz transparently.
func (s *Store) LoadCSVFile(path string) error {
	r, err := OpenDataset(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return s.LoadCSV(r)
}

func parseCandleRow(row []string) (market.Candle, bool, error) {
	if len(row) < 6 {
		return market.Candle{}, false, nil
	}

	ts := strings.TrimSpace(row[0])
	if ts == "" {
		return market.Candle{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return market.Candle{}, false, fmt.Errorf("bad time %q: %w", ts, err)
	}

	inst := strings.TrimSpace(row[1])
	if inst == "" {
		return market.Candle{}, false, nil
	}

	var vals [4]float64
	for i := 0; i < 4; i++ {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad price %q: %w", row[2+i], err)
		}
	}

	c := market.Candle{
		Instrument: inst,
		Time:       t,
		Open:       vals[0],
		High:       vals[1],
		Low:        vals[2],
		Close:      vals[3],
	}
	if len(row) > 6 && strings.TrimSpace(row[6]) != "" {
		c.Volume, err = strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
		if err != nil {
			return market.Candle{}, false, fmt.Errorf("bad volume %q: %w", row[6], err)
		}
	}
	return c, true, nil
}
