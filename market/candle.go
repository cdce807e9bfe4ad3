package market

import "time"

// Candle is a single OHLC(V) bar for one instrument. Candles are immutable
// once ingested; the price store rejects duplicates and out-of-order bars.
type Candle struct {
	Instrument string
	Time       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64 // zero for markets that do not report volume (forex)
}

// Valid reports whether the bar is internally consistent: positive prices
// and High/Low actually bracketing Open and Close.
func (c Candle) Valid() bool {
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return false
	}
	if c.High < c.Low {
		return false
	}
	if c.Open > c.High || c.Open < c.Low {
		return false
	}
	if c.Close > c.High || c.Close < c.Low {
		return false
	}
	return c.Volume >= 0
}
