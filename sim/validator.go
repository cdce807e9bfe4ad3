package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/replaybench/market"
)

// Validate checks a proposed order against the market's rules and a
// read-only portfolio snapshot. Checks run in order and short-circuit on the
// first failure. The three outcomes are disjoint: a validated order carrying
// its fill price, a typed rejection (non-fatal, treated as hold), or a fatal
// error (missing price data blocking a requested trade).
func Validate(o Order, snap Snapshot, prof market.Profile, prices Prices) (*ValidatedOrder, *Rejection, error) {
	reject := func(reason RejectReason, detail string) (*ValidatedOrder, *Rejection, error) {
		return nil, &Rejection{Order: o, Reason: reason, Detail: detail, Time: prices.Time}, nil
	}

	// An order not timestamped to the current step would let a decision leak
	// across cycles.
	if !o.Time.Equal(prices.Time) {
		return reject(ReasonStaleOrder, fmt.Sprintf(
			"order time %s, current step %s",
			o.Time.Format(time.RFC3339), prices.Time.Format(time.RFC3339)))
	}

	if !prof.InSession(o.Time) {
		return reject(ReasonMarketClosed, fmt.Sprintf(
			"%s not in session at %s", prof.ID, o.Time.Format(time.RFC3339)))
	}

	if o.Quantity <= 0 {
		return reject(ReasonInvalidLotSize, "quantity must be positive")
	}
	if !prof.AllowsFractional {
		lots := o.Quantity / prof.LotSize
		if math.Abs(lots-math.Round(lots)) > epsilon {
			return reject(ReasonInvalidLotSize, fmt.Sprintf(
				"quantity %g is not a multiple of lot size %g", o.Quantity, prof.LotSize))
		}
	}

	fill, ok := prices.Close(o.Instrument)
	if !ok {
		// No bar at or before the step: this blocks a requested trade, which
		// is fatal rather than a skippable valuation gap.
		return nil, nil, fmt.Errorf("%w: no price for %s at or before %s",
			ErrMissingPrice, o.Instrument, prices.Time.Format(time.RFC3339))
	}

	switch o.Side {
	case Sell:
		pos, held := snap.Positions[o.Instrument]
		if prof.Settlement == market.T1 {
			sellable := 0.0
			if held {
				sellable = pos.Sellable(prof, o.Time)
			}
			if sellable < o.Quantity-epsilon {
				return reject(ReasonInsufficientSettledQuantity, fmt.Sprintf(
					"sellable %g of %g held, order %g", sellable, pos.Quantity, o.Quantity))
			}
		} else {
			heldQty := 0.0
			if held {
				heldQty = pos.Quantity
			}
			if heldQty < o.Quantity-epsilon {
				return reject(ReasonInsufficientQuantity, fmt.Sprintf(
					"held %g, order %g", heldQty, o.Quantity))
			}
		}

	case Buy:
		cost := fill * o.Quantity
		if snap.Cash-cost < -epsilon {
			return reject(ReasonInsufficientCash, fmt.Sprintf(
				"cost %.2f exceeds cash %.2f", cost, snap.Cash))
		}

	default:
		return reject(ReasonInvalidLotSize, fmt.Sprintf("unknown side %d", o.Side))
	}

	return &ValidatedOrder{Order: o, FillPrice: fill, Profile: prof}, nil, nil
}
