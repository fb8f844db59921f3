/*
Package main is the entry point for the tulz CLI.

tulz searches the Tulz tool directory: a fixed catalog of browser tools plus
blog articles, ranked by a fuzzy weighted index and narrowed by category,
feature and sort filters.

Usage:
  tulz [command]

Available Commands:
  search        Search tools and articles
  tools         List catalog tools
  recent        Show or clear recent searches
  history       Inspect or prune recorded search analytics
  export-index  Export the search corpus as a prebuilt index artifact
  serve         Run the search preview API
  benchmark     Measure search latency per backend
  config        Manage ~/.tulz.json
  version       Show version information

Examples:
  # Search and filter
  tulz search json --category "Developer Tools"

  # Serve the JSON API
  tulz serve --addr 127.0.0.1:8080
*/
package main

import (
	"fmt"
	"os"

	"github.com/tulznet/tulz/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
