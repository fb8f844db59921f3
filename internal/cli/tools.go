package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/filter"
)

// NewToolsCmd creates the 'tools' command for browsing the catalog.
func NewToolsCmd() *cobra.Command {
	var (
		categories []string
		features   []string
		sortFlag   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "tools",
		Aliases: []string{"ls"},
		Short:   "List catalog tools",
		Long:    `Display the built-in tool catalog, optionally filtered by category and features.`,
		Example: `  tulz tools
  tulz tools --category "PDF Tools"
  tulz tools --features new --sort newest
  tulz tools --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTools(cmd, categories, features, sortFlag, jsonOutput)
		},
	}

	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "Only show tools in these categories")
	cmd.Flags().StringSliceVarP(&features, "features", "f", nil, "Only show tools with all of these features")
	cmd.Flags().StringVarP(&sortFlag, "sort", "s", "", "Sort order: popular, most-used, newest, a-z, z-a")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// runTools lists tools without touching the index or history.
func runTools(cmd *cobra.Command, categories, features []string, sortFlag string, jsonOutput bool) error {
	cats, feats, order, err := parseCriteria(categories, features, sortFlag)
	if err != nil {
		return err
	}

	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	tools := filter.Apply(cat.Tools(), nil, filter.Criteria{
		Categories: cats,
		Features:   feats,
		Sort:       order,
	})

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)
	}

	fmt.Fprintf(out, "Tools (%d):\n\n", len(tools))
	if len(tools) == 0 {
		fmt.Fprintln(out, "  No tools found.")
		return nil
	}
	printTools(out, tools)
	return nil
}
