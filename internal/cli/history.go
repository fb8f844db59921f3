package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the 'history' command for search analytics.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or prune recorded search analytics",
		Long: `Searches are recorded anonymously: only a hash of the query, the result
count and a timestamp are kept in ~/.tulz/history.db.`,
	}

	cmd.AddCommand(newHistoryStatsCmd())
	cmd.AddCommand(newHistoryCleanupCmd())

	return cmd
}

// newHistoryStatsCmd summarizes recent searches.
func newHistoryStatsCmd() *cobra.Command {
	var days int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show search statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.store.SearchStats(time.Now().AddDate(0, 0, -days))
			if err != nil {
				return fmt.Errorf("failed to read search stats: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintln(out, "Search History")
			fmt.Fprintln(out, "==============")
			fmt.Fprintf(out, "Storage enabled:  %t\n", a.store.Enabled())
			fmt.Fprintf(out, "Window:           last %d days\n", days)
			fmt.Fprintf(out, "Searches:         %d\n", stats.Total)
			fmt.Fprintf(out, "Distinct queries: %d\n", stats.DistinctQuery)
			fmt.Fprintf(out, "Zero results:     %d\n", stats.ZeroResults)
			fmt.Fprintf(out, "Average results:  %.1f\n", stats.AverageResults)
			if !stats.Last.IsZero() {
				fmt.Fprintf(out, "Last search:      %s\n", stats.Last.Local().Format(time.RFC1123))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Number of days to summarize")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	return cmd
}

// newHistoryCleanupCmd deletes records older than the retention window.
func newHistoryCleanupCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete search records older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--retention must be positive")
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.Cleanup(time.Duration(days) * 24 * time.Hour); err != nil {
				return fmt.Errorf("failed to clean up history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed searches older than %d days\n", days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "retention", 90, "Days of history to keep")
	return cmd
}
