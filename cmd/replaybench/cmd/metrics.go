package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/replaybench/journal"
	"github.com/rustyeddy/replaybench/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Recompute a metrics report from a journal",
	Long: `Recompute return and risk statistics from the equity snapshots in an
existing journal (JSONL or SQLite). Cycles recorded as failed are listed as
flagged in the report.

Example:
  replaybench metrics --journal ./journal.jsonl --frequency daily`,
	RunE: runMetrics,
}

var (
	metricsJournalPath string
	metricsFrequency   string
	metricsRiskFree    float64
	metricsAlwaysOpen  bool
)

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().StringVarP(&metricsJournalPath, "journal", "j", "", "path to a JSONL or SQLite journal (required)")
	metricsCmd.Flags().StringVar(&metricsFrequency, "frequency", "daily", "decision frequency: daily or hourly")
	metricsCmd.Flags().Float64Var(&metricsRiskFree, "risk-free", 0, "per-period risk-free rate")
	metricsCmd.Flags().BoolVar(&metricsAlwaysOpen, "always-open", false, "annualize over 365 days (crypto universes)")
	metricsCmd.MarkFlagRequired("journal")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	points, flagged, err := loadEquity(metricsJournalPath)
	if err != nil {
		return err
	}

	periods, err := metrics.PeriodsPerYear(metricsFrequency, metricsAlwaysOpen)
	if err != nil {
		return err
	}

	rep, err := metrics.Compute(points, metrics.Options{
		PeriodsPerYear: periods,
		RiskFree:       metricsRiskFree,
		Flagged:        flagged,
	})
	if err != nil {
		return fmt.Errorf("compute metrics: %w", err)
	}

	fmt.Printf("Journal: %s (%d equity snapshots)\n\n", metricsJournalPath, rep.Periods+1)
	fmt.Printf("  Start Value:       $%12.2f\n", rep.StartValue)
	fmt.Printf("  End Value:         $%12.2f\n", rep.EndValue)
	fmt.Printf("  Cumulative Return: %8.2f%%\n", rep.CumulativeReturn*100)
	fmt.Printf("  Annualized Return: %8.2f%%\n", rep.AnnualizedReturn*100)
	fmt.Printf("  Volatility:        %8.2f%%\n", rep.Volatility*100)
	fmt.Printf("  Sharpe:            %8.2f\n", rep.Sharpe)
	fmt.Printf("  Sortino:           %8.2f\n", rep.Sortino)
	fmt.Printf("  Max Drawdown:      %8.2f%%\n", rep.MaxDrawdown*100)
	fmt.Printf("  Calmar:            %8.2f\n", rep.Calmar)
	fmt.Printf("  Win Rate:          %8.2f%%\n", rep.WinRate*100)

	if len(rep.FlaggedCycles) > 0 {
		fmt.Printf("\nFlagged cycles (%d):\n", len(rep.FlaggedCycles))
		for _, t := range rep.FlaggedCycles {
			fmt.Printf("  %s\n", t.Format(time.RFC3339))
		}
	}
	return nil
}

func loadEquity(path string) ([]metrics.Point, []time.Time, error) {
	if strings.HasSuffix(path, ".sqlite") || strings.HasSuffix(path, ".db") {
		j, err := journal.NewSQLite(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		defer j.Close()

		snaps, err := j.ListEquity()
		if err != nil {
			return nil, nil, fmt.Errorf("read equity: %w", err)
		}
		flagged, err := j.ListFlaggedCycles()
		if err != nil {
			return nil, nil, fmt.Errorf("read cycles: %w", err)
		}
		return equityToPoints(snaps), flagged, nil
	}

	recs, err := journal.ReadJSONLFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read journal: %w", err)
	}
	return equityToPoints(recs.Equity), recs.FlaggedCycles(), nil
}

func equityToPoints(snaps []journal.EquitySnapshot) []metrics.Point {
	pts := make([]metrics.Point, len(snaps))
	for i, s := range snaps {
		pts[i] = metrics.Point{Time: s.Time, Value: s.Equity}
	}
	return pts
}
