package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/replaybench/journal"
	"github.com/rustyeddy/replaybench/market"
)

// View is what a decision source sees for one cycle: the gated prices and a
// read-only portfolio snapshot, both as of the current step. Nothing in a
// View can observe data past View.Time.
type View struct {
	Time      time.Time
	Prices    Prices
	Portfolio Snapshot
}

// DecisionSource produces the orders for one cycle. The core never blocks
// on external I/O itself; whatever network or model calls a source makes
// must resolve inside Decide.
type DecisionSource interface {
	Name() string
	Decide(ctx context.Context, v View) ([]Order, error)
}

// Runner drives one isolated simulation: step-synchronous, one decision
// cycle per simulated timestamp. Cycles run strictly sequentially; a run can
// be cancelled between cycles, never inside one.
type Runner struct {
	Gate    *Gate
	Ledger  *Ledger
	Engine  *Engine
	Journal journal.Journal
	Source  DecisionSource
	Steps   []time.Time
	Log     *zap.Logger
}

// Result summarizes a completed run.
type Result struct {
	Source        string
	Start         time.Time
	End           time.Time
	Cycles        int
	Trades        int
	Rejections    int
	Final         Snapshot
	History       []Snapshot
	FlaggedCycles []time.Time
}

// Run executes every step. Validation and execution failures that are typed
// rejections or execution conflicts never abort the run; look-ahead
// violations, data corruption, and source failures do.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Gate == nil || r.Ledger == nil || r.Engine == nil || r.Source == nil {
		return Result{}, fmt.Errorf("sim: runner needs gate, ledger, engine and source")
	}
	if len(r.Steps) == 0 {
		return Result{}, fmt.Errorf("sim: runner has no steps")
	}
	jnl := r.Journal
	if jnl == nil {
		jnl = journal.Nop{}
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("source", r.Source.Name()))

	res := Result{Source: r.Source.Name(), Start: r.Steps[0]}

	var prev time.Time
	for _, step := range r.Steps {
		// Abort points sit between cycles only.
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if step.Before(prev) {
			return res, fmt.Errorf("%w: step %s before previous step %s",
				ErrLookAhead, step.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		prev = step

		if err := r.cycle(ctx, jnl, log, step, &res); err != nil {
			return res, err
		}
		res.Cycles++
		res.End = step
	}

	res.History = r.Ledger.History()
	if n := len(res.History); n > 0 {
		res.Final = res.History[n-1]
	}
	return res, nil
}

func (r *Runner) cycle(ctx context.Context, jnl journal.Journal, log *zap.Logger, step time.Time, res *Result) error {
	prices, err := r.Gate.Visible(step)
	if err != nil {
		return err
	}

	orders, err := r.Source.Decide(ctx, View{
		Time:      step,
		Prices:    prices,
		Portfolio: r.Ledger.view(step, prices),
	})
	if err != nil {
		return fmt.Errorf("decision source %s at %s: %w", r.Source.Name(), step.Format(time.RFC3339), err)
	}

	status := journal.CycleOK
	detail := ""
	cycTrades, cycRejects := 0, 0

	for i := range orders {
		o := orders[i]
		prof := market.ProfileFor(o.Instrument)

		// Each order validates against the ledger as left by the previous
		// fill, so a cycle of buys cannot overspend in aggregate.
		vo, rej, err := Validate(o, r.Ledger.view(step, prices), prof, prices)
		if err != nil {
			return err
		}
		if rej != nil {
			cycRejects++
			log.Warn("order rejected",
				zap.String("instrument", o.Instrument),
				zap.String("side", o.Side.String()),
				zap.Float64("quantity", o.Quantity),
				zap.String("reason", string(rej.Reason)),
				zap.String("detail", rej.Detail),
				zap.Time("time", step),
			)
			if jerr := jnl.RecordRejection(journal.RejectionRecord{
				Time:       step,
				Instrument: o.Instrument,
				Side:       o.Side.String(),
				Quantity:   o.Quantity,
				Reason:     string(rej.Reason),
				Detail:     rej.Detail,
			}); jerr != nil {
				return jerr
			}
			continue
		}

		if _, err := r.Engine.Execute(vo); err != nil {
			if !errors.Is(err, ErrExecutionConflict) {
				return err
			}
			// Conflict fails the cycle, not the run: remaining orders are
			// dropped, committed state stands, and the cycle is flagged so
			// metrics can exclude it.
			status = journal.CycleConflict
			detail = err.Error()
			log.Error("cycle failed", zap.Time("time", step), zap.Error(err))
			break
		}
		cycTrades++
	}

	snap := r.Ledger.Snapshot(step, prices)
	if err := jnl.RecordEquity(journal.EquitySnapshot{
		Time:   step,
		Cash:   snap.Cash,
		Equity: snap.TotalValue,
	}); err != nil {
		return err
	}
	if err := jnl.RecordCycle(journal.CycleRecord{
		Time:       step,
		Status:     status,
		Trades:     cycTrades,
		Rejections: cycRejects,
		Detail:     detail,
	}); err != nil {
		return err
	}

	res.Trades += cycTrades
	res.Rejections += cycRejects
	if status != journal.CycleOK {
		res.FlaggedCycles = append(res.FlaggedCycles, step)
	}
	return nil
}
