package cli

import (
	"github.com/spf13/cobra"
	"github.com/tulznet/tulz/internal/version"
)

// NewRootCmd assembles the tulz command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tulz",
		Short: "Search, filter and sort the Tulz tool directory",
		Long: `tulz is the search engine behind the Tulz tool directory.

It indexes the built-in tool catalog together with blog articles, runs fuzzy
weighted queries over them, and applies the same category, feature and sort
filters as the /tools page. The same engine is exposed as a JSON API by
'tulz serve'.`,
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String(ConfigFlag, "", "Config file (default: ~/.tulz.json)")

	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewToolsCmd())
	rootCmd.AddCommand(NewRecentCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewExportIndexCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewBenchmarkCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
