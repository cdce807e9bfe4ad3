// Package sim is the deterministic replay-and-execution core: a temporal
// gate over the price store, an order validator driven by per-market rules,
// an execution engine that is the sole mutator of the portfolio ledger, and
// the step-synchronous runner that drives one decision cycle per simulated
// timestamp.
package sim

import (
	"errors"
	"time"
)

// Fatal error classes. Look-ahead violations and price-store corruption
// abort a run outright: results produced after either are worthless.
var (
	// ErrLookAhead marks any attempt to observe data past the simulated
	// cutoff or to move simulated time backwards.
	ErrLookAhead = errors.New("sim: look-ahead violation")

	// ErrMissingPrice marks absent price data. Recoverable when it only
	// affects valuation; fatal when it blocks a requested trade.
	ErrMissingPrice = errors.New("sim: missing price data")

	// ErrExecutionConflict marks a failed execution. It fails the current
	// cycle only: prior state is untouched and the run continues.
	ErrExecutionConflict = errors.New("sim: execution conflict")
)

// RejectReason is the typed reason an order was refused. Rejections are
// non-fatal: they are journaled and the order is treated as a hold.
type RejectReason string

const (
	ReasonMarketClosed                RejectReason = "MarketClosed"
	ReasonInvalidLotSize              RejectReason = "InvalidLotSize"
	ReasonInsufficientSettledQuantity RejectReason = "InsufficientSettledQuantity"
	ReasonInsufficientQuantity        RejectReason = "InsufficientQuantity"
	ReasonInsufficientCash            RejectReason = "InsufficientCash"
	// ReasonStaleOrder rejects an order whose timestamp does not match the
	// current simulated step.
	ReasonStaleOrder RejectReason = "StaleOrder"
)

// Rejection records why an order was refused.
type Rejection struct {
	Order  Order
	Reason RejectReason
	Detail string
	Time   time.Time
}
