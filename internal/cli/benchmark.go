package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tulznet/tulz/internal/benchmark"
	"github.com/tulznet/tulz/internal/search"
)

// NewBenchmarkCmd creates the 'benchmark' command for latency testing.
func NewBenchmarkCmd() *cobra.Command {
	var (
		iterations int
		backend    string
		queries    []string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure search latency per backend",
		Long: `Build every search backend over the current corpus and measure:
1. Index build time
2. Query latency (mean, p50, p95, max)
3. Hits per query and zero-hit queries

Without --query, queries are derived from the corpus titles, including
prefixes and single-typo variants.`,
		Example: `  # Compare both backends
  tulz benchmark

  # One backend, custom queries
  tulz benchmark --backend subsequence --query json --query "imge comp" -n 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, iterations, backend, queries, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&iterations, "iterations", "n", benchmark.DefaultIterations, "Runs per query")
	cmd.Flags().StringVar(&backend, "backend", "all", "Backend to measure: all, bleve or subsequence")
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Query to run (repeatable)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runBenchmark(cmd *cobra.Command, iterations int, backend string, queries []string, jsonOutput bool) error {
	var backends []string
	switch backend {
	case "all":
		backends = []string{search.BackendBleve, search.BackendSubsequence}
	case search.BackendBleve, search.BackendSubsequence:
		backends = []string{backend}
	default:
		return fmt.Errorf("unknown backend %q", backend)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.source()()
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	report, err := benchmark.Run(entries, queries, backends, a.cfg.SearchConfig(), iterations)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(out, "║                SEARCH BENCHMARK (Query Latency)              ║")
	fmt.Fprintln(out, "╠══════════════════════════════════════════════════════════════╣")
	fmt.Fprintf(out, "║  Corpus entries: %-5d  Iterations per query: %-5d          ║\n", report.Entries, report.Iterations)
	fmt.Fprintln(out, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(out)

	for _, r := range report.Results {
		fmt.Fprintf(out, "Backend: %s\n", r.Backend)
		fmt.Fprintf(out, "  Build:     %v\n", round(r.BuildTime))
		fmt.Fprintf(out, "  Queries:   %d (%d runs)\n", r.Queries, r.Runs)
		fmt.Fprintf(out, "  Mean:      %v\n", round(r.Mean))
		fmt.Fprintf(out, "  p50 / p95: %v / %v\n", round(r.P50), round(r.P95))
		fmt.Fprintf(out, "  Max:       %v\n", round(r.Max))
		fmt.Fprintf(out, "  Hits:      %.1f avg, %d zero-hit\n", r.AvgHits, r.ZeroHit)
		fmt.Fprintln(out)
	}
	return nil
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Microsecond)
}
