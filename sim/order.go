package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/replaybench/market"
)

// Side: +1 buy, -1 sell.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// SideFromString parses "buy" or "sell".
func SideFromString(s string) (Side, error) {
	switch s {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown order side %q", s)
	}
}

// Order is a proposed trade from the decision source. Orders are consumed
// exactly once: each becomes either a trade record or a rejection.
type Order struct {
	Instrument string
	Side       Side
	Quantity   float64
	Time       time.Time
}

// ValidatedOrder is an order that passed validation, carrying the fill price
// fixed at validation time from the gated snapshot. No slippage, no partial
// fills: the configured fill policy is the gated close.
type ValidatedOrder struct {
	Order     Order
	FillPrice float64
	Profile   market.Profile

	executed bool
}
