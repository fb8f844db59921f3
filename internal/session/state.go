/*
Package session owns the search state of one browsing session.

A Controller mediates between raw keystrokes and the committed query used
for searching, mirrors the state into the shareable URL and keeps a short
list of recent searches in durable storage. All failures degrade to empty
or default values; nothing here returns an error to the caller.
*/
package session

import (
	"strings"

	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/filter"
)

// SearchState is the authoritative search state.
type SearchState struct {
	// Query is the raw input.
	Query string `json:"query"`

	// DebouncedQuery follows Query once input has been quiet for the
	// debounce window.
	DebouncedQuery string `json:"debouncedQuery"`

	Categories []catalog.Category `json:"categories"`
	Features   []string           `json:"features"`
	Sort       filter.SortOrder   `json:"sort"`

	// RecentSearches is most-recent-first without case-insensitive
	// duplicates.
	RecentSearches []string `json:"recentSearches"`

	// IsSearching is true from a keystroke until the debounce settles.
	IsSearching bool `json:"isSearching"`
}

// DefaultState returns the empty state.
func DefaultState() SearchState {
	return SearchState{
		Categories:     []catalog.Category{},
		Features:       []string{},
		Sort:           filter.DefaultSort,
		RecentSearches: []string{},
	}
}

// Clone returns a deep copy.
func (s SearchState) Clone() SearchState {
	out := s
	out.Categories = append([]catalog.Category{}, s.Categories...)
	out.Features = append([]string{}, s.Features...)
	out.RecentSearches = append([]string{}, s.RecentSearches...)
	return out
}

// Criteria returns the filter selections for the committed query.
func (s SearchState) Criteria() filter.Criteria {
	return filter.Criteria{
		Query:      strings.TrimSpace(s.DebouncedQuery),
		Categories: s.Categories,
		Features:   s.Features,
		Sort:       s.Sort,
	}
}

// normalizeCategories drops duplicates, keeping first occurrence order.
func normalizeCategories(in []catalog.Category) []catalog.Category {
	out := make([]catalog.Category, 0, len(in))
	seen := make(map[catalog.Category]bool, len(in))
	for _, c := range in {
		parsed, ok := catalog.ParseCategory(string(c))
		if !ok || seen[parsed] {
			continue
		}
		seen[parsed] = true
		out = append(out, parsed)
	}
	return out
}

// normalizeFeatures trims and lowercases feature names, dropping blanks and
// duplicates.
func normalizeFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
