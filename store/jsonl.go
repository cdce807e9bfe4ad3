// store/jsonl.go
//
// Loader for merged daily-price JSONL datasets. Each line is one provider
// document: a "Meta Data" object naming the instrument plus a "Time Series
// ..." object of bars keyed by date. Merge tooling renames "1. open" to
// "1. buy price" and "4. close" to "4. sell price"; both spellings are
// accepted here. FX documents carry no volume.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/replaybench/market"
)

const (
	layoutDaily  = "2006-01-02"
	layoutIntra  = "2006-01-02 15:04:05"
	maxLineBytes = 16 << 20 // a full-history document for one instrument
)

// LoadJSONL reads a merged JSONL dataset into the store.
// Lines that are blank are skipped; malformed lines are corruption.
func (s *Store) LoadJSONL(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	var bars []market.Candle
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		docBars, err := parseDocument([]byte(raw))
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrCorrupt, line, err)
		}
		bars = append(bars, docBars...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	return s.AddAll(bars)
}

// LoadJSONLFile loads a dataset file, decompressing .gz/.xz transparently.
func (s *Store) LoadJSONLFile(path string) error {
	r, err := OpenDataset(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return s.LoadJSONL(r)
}

func parseDocument(raw []byte) ([]market.Candle, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	symbol, err := documentSymbol(doc)
	if err != nil {
		return nil, err
	}

	var series map[string]map[string]string
	for key, val := range doc {
		if strings.HasPrefix(key, "Time Series") {
			if err := json.Unmarshal(val, &series); err != nil {
				return nil, fmt.Errorf("time series for %s: %w", symbol, err)
			}
			break
		}
	}
	if series == nil {
		return nil, fmt.Errorf("no time series in document for %s", symbol)
	}

	bars := make([]market.Candle, 0, len(series))
	for stamp, fields := range series {
		t, err := parseStamp(stamp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}

		c := market.Candle{Instrument: symbol, Time: t}
		var ok bool
		// The newest bar of a merged dataset may carry only the open; such
		// partial bars are not replayable OHLC and are dropped.
		if c.Open, ok = field(fields, "1. open", "1. buy price"); !ok {
			continue
		}
		if c.Close, ok = field(fields, "4. close", "4. sell price"); !ok {
			continue
		}
		if c.High, ok = field(fields, "2. high"); !ok {
			c.High = maxf(c.Open, c.Close)
		}
		if c.Low, ok = field(fields, "3. low"); !ok {
			c.Low = minf(c.Open, c.Close)
		}
		c.Volume, _ = field(fields, "5. volume", "6. volume")

		bars = append(bars, c)
	}
	return bars, nil
}

func documentSymbol(doc map[string]json.RawMessage) (string, error) {
	raw, ok := doc["Meta Data"]
	if !ok {
		return "", fmt.Errorf("document has no Meta Data")
	}
	var meta map[string]string
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", fmt.Errorf("meta data: %w", err)
	}

	if sym := strings.TrimSpace(meta["2. Symbol"]); sym != "" {
		return sym, nil
	}
	// FX documents name the pair as from/to currencies.
	from := strings.TrimSpace(meta["2. From Symbol"])
	to := strings.TrimSpace(meta["3. To Symbol"])
	if from != "" && to != "" {
		return from + to, nil
	}
	if sym := strings.TrimSpace(meta["2. Digital Currency Code"]); sym != "" {
		return sym, nil
	}
	return "", fmt.Errorf("meta data names no symbol")
}

func parseStamp(stamp string) (time.Time, error) {
	if t, err := time.Parse(layoutDaily, stamp); err == nil {
		return t, nil
	}
	t, err := time.Parse(layoutIntra, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad bar timestamp %q", stamp)
	}
	return t, nil
}

func field(fields map[string]string, names ...string) (float64, bool) {
	for _, name := range names {
		v, ok := fields[name]
		if !ok {
			continue
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return x, true
	}
	return 0, false
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
