package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/replaybench/internal/id"
	"github.com/rustyeddy/replaybench/journal"
)

// Engine fills validated orders against the ledger. Execution is
// deterministic: the same (order, ledger state, price) always produces the
// same fill. Engine.Execute is the only code path that mutates the ledger.
type Engine struct {
	ledger  *Ledger
	journal journal.Journal
	log     *zap.Logger
}

func NewEngine(l *Ledger, j journal.Journal, log *zap.Logger) *Engine {
	if j == nil {
		j = journal.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{ledger: l, journal: j, log: log}
}

// Execute fills a validated order at its fixed fill price, commits the
// resulting trade to the ledger all-or-nothing, and appends the trade
// record. A validated order may be executed at most once; a second attempt,
// or a ledger state that no longer supports the fill, is an execution
// conflict that leaves prior state untouched.
func (e *Engine) Execute(vo *ValidatedOrder) (journal.TradeRecord, error) {
	if vo == nil {
		return journal.TradeRecord{}, fmt.Errorf("%w: nil validated order", ErrExecutionConflict)
	}
	if vo.executed {
		return journal.TradeRecord{}, fmt.Errorf("%w: order for %s at %s already consumed",
			ErrExecutionConflict, vo.Order.Instrument, vo.Order.Time)
	}
	vo.executed = true

	o := vo.Order
	gross := vo.FillPrice * o.Quantity

	tr := journal.TradeRecord{
		TradeID:    id.New(),
		Instrument: o.Instrument,
		Side:       o.Side.String(),
		Quantity:   o.Quantity,
		FillPrice:  vo.FillPrice,
		Time:       o.Time,
	}
	switch o.Side {
	case Buy:
		tr.CashDelta = -gross
	case Sell:
		tr.CashDelta = gross
		// Realized P&L against the weighted-average cost basis; the basis
		// itself is unchanged by sells.
		if pos, ok := e.ledger.Position(o.Instrument); ok {
			tr.RealizedPL = (vo.FillPrice - pos.AvgCost) * o.Quantity
		}
	}

	if err := e.ledger.apply(tr, vo.Profile); err != nil {
		return journal.TradeRecord{}, err
	}

	if err := e.journal.RecordTrade(tr); err != nil {
		return journal.TradeRecord{}, fmt.Errorf("record trade %s: %w", tr.TradeID, err)
	}

	e.log.Info("filled",
		zap.String("trade_id", tr.TradeID),
		zap.String("instrument", tr.Instrument),
		zap.String("side", tr.Side),
		zap.Float64("quantity", tr.Quantity),
		zap.Float64("price", tr.FillPrice),
		zap.Float64("cash_delta", tr.CashDelta),
		zap.Float64("realized_pl", tr.RealizedPL),
		zap.Time("time", tr.Time),
	)
	return tr, nil
}
