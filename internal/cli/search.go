package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/session"
	"github.com/tulznet/tulz/internal/storage"
)

// searchOptions holds the search command flags.
type searchOptions struct {
	categories []string
	features   []string
	sort       string
	limit      int
	jsonOutput bool
	noHistory  bool
}

// searchOutput is the --json shape of a search.
type searchOutput struct {
	Query    string               `json:"query"`
	URL      string               `json:"url"`
	Tools    []catalog.ToolRecord `json:"tools"`
	Articles []catalog.Entry      `json:"articles"`
}

// NewSearchCmd creates the 'search' command.
func NewSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search tools and articles",
		Long: `Search the tool catalog and blog articles, then filter and sort the matching tools.

Without a query every tool passes to the filters. With a query, tools are
kept in relevance order unless --sort asks for something else. Submitted
queries are remembered in the recent-search list.`,
		Example: `  # Free-text search
  tulz search json format

  # Filter and sort
  tulz search --category "Image Tools" --sort a-z

  # Machine-readable output
  tulz search pdf --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.categories, "category", "c", nil, "Only show tools in these categories")
	cmd.Flags().StringSliceVarP(&opts.features, "features", "f", nil, "Only show tools with all of these features")
	cmd.Flags().StringVarP(&opts.sort, "sort", "s", "", "Sort order: popular, most-used, newest, a-z, z-a")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum results for a query, applied after filtering (default from config)")
	cmd.Flags().BoolVarP(&opts.jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this search")

	return cmd
}

// runSearch drives a session controller the way the search page does: the
// URL state seeds the filters and the query is submitted directly.
func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	cats, feats, order, err := parseCriteria(opts.categories, opts.features, opts.sort)
	if err != nil {
		return err
	}
	if opts.limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	a.loadIndex()

	var (
		store   session.KVStore = a.store
		tracker session.Tracker = a.tracker
	)
	if opts.noHistory {
		store = storage.NewMemoryKV()
		tracker = nil
	}

	limit := opts.limit
	if limit == 0 {
		limit = a.cfg.Settings.SearchLimit
	}

	initial := session.Encode(session.SearchState{
		Categories: cats,
		Features:   feats,
		Sort:       order,
	})
	ctrl := session.NewController(initial, session.Options{
		Catalog:     a.catalog,
		Searcher:    a.index,
		Store:       store,
		Tracker:     tracker,
		Debounce:    a.cfg.Debounce(),
		RecentLimit: a.cfg.Settings.RecentLimit,
		SearchLimit: limit,
		Logger:      &a.logger,
	})
	defer ctrl.Close()

	if strings.TrimSpace(query) != "" {
		ctrl.Submit(query)
	}

	res := ctrl.Results()
	link := ctrl.URL().Encode()

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(searchOutput{
			Query:    res.Query,
			URL:      link,
			Tools:    res.Tools,
			Articles: res.Articles,
		})
	}

	printResults(out, res, link)
	return nil
}

func printResults(out io.Writer, res session.Results, link string) {
	if res.Query != "" {
		fmt.Fprintf(out, "Tools matching %q (%d):\n\n", res.Query, len(res.Tools))
	} else {
		fmt.Fprintf(out, "Tools (%d):\n\n", len(res.Tools))
	}

	if len(res.Tools) == 0 {
		fmt.Fprintln(out, "  No tools found. Try a different query or clear the filters.")
	} else {
		printTools(out, res.Tools)
	}

	if len(res.Articles) > 0 {
		fmt.Fprintf(out, "\nArticles (%d):\n\n", len(res.Articles))
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, a := range res.Articles {
			fmt.Fprintf(tw, "  %s\t%s\n", a.Title, a.URL)
		}
		tw.Flush()
	}

	if link != "" {
		fmt.Fprintf(out, "\nLink: /tools?%s\n", link)
	}
}

func printTools(out io.Writer, tools []catalog.ToolRecord) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range tools {
		var badges []string
		if t.Popular {
			badges = append(badges, "popular")
		}
		if t.New {
			badges = append(badges, "new")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", t.Name, t.Category, t.Href, strings.Join(badges, ","))
	}
	tw.Flush()
}
