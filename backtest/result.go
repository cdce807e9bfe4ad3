package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/replaybench/metrics"
	"github.com/rustyeddy/replaybench/sim"
)

// PrintResult writes a human-readable summary of one completed run.
func PrintResult(w io.Writer, res sim.Result, rep metrics.Report) {
	fmt.Fprintf(w, "Run: %s\n", res.Source)
	fmt.Fprintf(w, "  Window: %s .. %s (%d cycles)\n",
		res.Start.Format("2006-01-02 15:04"), res.End.Format("2006-01-02 15:04"), res.Cycles)
	fmt.Fprintf(w, "  Trades: %d  Rejections: %d\n", res.Trades, res.Rejections)
	fmt.Fprintf(w, "  Final: $%.2f cash, $%.2f equity\n", res.Final.Cash, res.Final.TotalValue)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Cumulative Return: %8.2f%%\n", rep.CumulativeReturn*100)
	fmt.Fprintf(w, "  Annualized Return: %8.2f%%\n", rep.AnnualizedReturn*100)
	fmt.Fprintf(w, "  Volatility:        %8.2f%%\n", rep.Volatility*100)
	fmt.Fprintf(w, "  Sharpe:            %8.2f\n", rep.Sharpe)
	fmt.Fprintf(w, "  Sortino:           %8.2f\n", rep.Sortino)
	fmt.Fprintf(w, "  Max Drawdown:      %8.2f%%\n", rep.MaxDrawdown*100)
	fmt.Fprintf(w, "  Calmar:            %8.2f\n", rep.Calmar)
	fmt.Fprintf(w, "  Win Rate:          %8.2f%%\n", rep.WinRate*100)

	if len(rep.FlaggedCycles) > 0 {
		fmt.Fprintf(w, "\n  Flagged cycles (%d):\n", len(rep.FlaggedCycles))
		for _, t := range rep.FlaggedCycles {
			fmt.Fprintf(w, "    %s\n", t.Format(time.RFC3339))
		}
	}
}
