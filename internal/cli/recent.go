package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tulznet/tulz/internal/session"
)

// NewRecentCmd creates the 'recent' command with list and clear
// subcommands. Bare 'recent' lists.
func NewRecentCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show or clear recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecentList(cmd, jsonOutput)
		},
	}
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	cmd.AddCommand(newRecentListCmd())
	cmd.AddCommand(newRecentClearCmd())

	return cmd
}

func newRecentListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent searches, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecentList(cmd, jsonOutput)
		},
	}
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func newRecentClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecentClear(cmd)
		},
	}
}

// openRecent returns the recent store over the history database.
func openRecent(cmd *cobra.Command) (*app, *session.RecentStore, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	return a, session.NewRecentStore(a.store, a.cfg.Settings.RecentLimit, a.logger), nil
}

func runRecentList(cmd *cobra.Command, jsonOutput bool) error {
	a, recent, err := openRecent(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	list := recent.Load()
	out := cmd.OutOrStdout()

	if jsonOutput {
		return json.NewEncoder(out).Encode(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No recent searches.")
		return nil
	}
	fmt.Fprintf(out, "Recent searches (%d):\n\n", len(list))
	for i, q := range list {
		fmt.Fprintf(out, "  %d. %s\n", i+1, q)
	}
	return nil
}

func runRecentClear(cmd *cobra.Command) error {
	a, recent, err := openRecent(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	recent.Clear()
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Recent searches cleared")
	return nil
}
