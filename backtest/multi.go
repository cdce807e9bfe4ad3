package backtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/replaybench/journal"
	"github.com/rustyeddy/replaybench/metrics"
	"github.com/rustyeddy/replaybench/sim"
	"github.com/rustyeddy/replaybench/store"
)

// Agent pairs a decision source with its journal. Each agent gets a fully
// isolated ledger and engine; nothing an agent does is visible to another.
type Agent struct {
	Source  sim.DecisionSource
	Journal journal.Journal
}

// Options applies to every agent in a batch run.
type Options struct {
	Cash    float64
	Steps   []time.Time
	Horizon time.Time // zero means the whole dataset
	Metrics metrics.Options
	Log     *zap.Logger
}

// Outcome is one agent's completed (or failed) run. Err is set when the run
// aborted; Result then holds whatever completed before the abort.
type Outcome struct {
	Result sim.Result
	Report metrics.Report
	Err    error
}

// RunAll replays every agent over the same dataset concurrently. Agents
// share the candle store read-only; ledgers, engines and journals are per
// agent, so runs are independent and their outcomes order-stable.
func RunAll(ctx context.Context, st *store.Store, opts Options, agents ...Agent) []Outcome {
	out := make([]Outcome, len(agents))

	var wg sync.WaitGroup
	for i := range agents {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = runOne(ctx, st, opts, agents[i])
		}(i)
	}
	wg.Wait()
	return out
}

func runOne(ctx context.Context, st *store.Store, opts Options, a Agent) Outcome {
	if a.Source == nil {
		return Outcome{Err: fmt.Errorf("backtest: agent has no decision source")}
	}

	ledger := sim.NewLedger(opts.Cash)
	r := &sim.Runner{
		Gate:    sim.NewGate(st, opts.Horizon),
		Ledger:  ledger,
		Engine:  sim.NewEngine(ledger, a.Journal, opts.Log),
		Journal: a.Journal,
		Source:  a.Source,
		Steps:   opts.Steps,
		Log:     opts.Log,
	}

	res, err := r.Run(ctx)
	if err != nil {
		return Outcome{Result: res, Err: err}
	}

	mo := opts.Metrics
	mo.Flagged = append(mo.Flagged, res.FlaggedCycles...)
	rep, err := metrics.Compute(EquityPoints(res.History), mo)
	if err != nil {
		return Outcome{Result: res, Err: fmt.Errorf("metrics for %s: %w", res.Source, err)}
	}
	return Outcome{Result: res, Report: rep}
}

// EquityPoints projects a run's snapshot history onto the equity curve the
// metrics engine consumes.
func EquityPoints(history []sim.Snapshot) []metrics.Point {
	pts := make([]metrics.Point, len(history))
	for i, s := range history {
		pts[i] = metrics.Point{Time: s.Time, Value: s.TotalValue}
	}
	return pts
}
