// Package filter narrows and orders the tool list for display.
//
// Apply is a pure function: the same tools, matches and criteria always yield
// the same output, and neither input slice is modified.
package filter

import (
	"sort"
	"strings"

	"github.com/tulznet/tulz/internal/catalog"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortOrder selects how results are ordered.
type SortOrder string

const (
	SortPopular  SortOrder = "popular"
	SortMostUsed SortOrder = "most-used"
	SortNewest   SortOrder = "newest"
	SortAZ       SortOrder = "a-z"
	SortZA       SortOrder = "z-a"

	// DefaultSort is omitted from URLs and keeps relevance order for queries.
	DefaultSort = SortPopular
)

// SortOrders lists every accepted sort token.
var SortOrders = []SortOrder{SortPopular, SortMostUsed, SortNewest, SortAZ, SortZA}

// ParseSortOrder resolves a sort token. Unknown tokens return false.
func ParseSortOrder(s string) (SortOrder, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, o := range SortOrders {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}

// Feature names with dedicated record flags. Any other feature is matched
// against tool tags.
const (
	FeaturePopular = "popular"
	FeatureNew     = "new"
)

// Criteria are the user's current selections.
type Criteria struct {
	Query      string
	Categories []catalog.Category
	Features   []string
	Sort       SortOrder
}

// HasFeature reports whether t satisfies the named feature.
func HasFeature(t catalog.ToolRecord, feature string) bool {
	switch strings.ToLower(strings.TrimSpace(feature)) {
	case FeaturePopular:
		return t.Popular
	case FeatureNew:
		return t.New
	default:
		return t.HasTag(feature)
	}
}

// Apply filters tools conjunctively and sorts the survivors.
//
// matches holds the ids returned by the query engine, best first, or nil when
// there is no query. With a query and the default sort the relevance order is
// kept; any other sort reorders.
func Apply(tools []catalog.ToolRecord, matches []string, c Criteria) []catalog.ToolRecord {
	candidates := tools
	if matches != nil {
		candidates = inMatchOrder(tools, matches)
	}

	out := make([]catalog.ToolRecord, 0, len(candidates))
	for _, t := range candidates {
		if !inCategories(t, c.Categories) {
			continue
		}
		if !hasAllFeatures(t, c.Features) {
			continue
		}
		out = append(out, t)
	}

	sortOrder := c.Sort
	if sortOrder == "" {
		sortOrder = DefaultSort
	}
	if matches != nil && strings.TrimSpace(c.Query) != "" && sortOrder == DefaultSort {
		return out
	}

	Sort(out, sortOrder)
	return out
}

// Sort orders tools in place. Every order is stable.
func Sort(tools []catalog.ToolRecord, order SortOrder) {
	switch order {
	case SortPopular, SortMostUsed:
		sort.SliceStable(tools, func(i, j int) bool {
			return tools[i].UsageCount > tools[j].UsageCount
		})
	case SortNewest:
		sort.SliceStable(tools, func(i, j int) bool {
			return tools[i].New && !tools[j].New
		})
	case SortAZ, SortZA:
		// Collators keep scratch buffers and are not safe to share.
		col := collate.New(language.English)
		desc := order == SortZA
		sort.SliceStable(tools, func(i, j int) bool {
			cmp := col.CompareString(tools[i].Name, tools[j].Name)
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
}

func inMatchOrder(tools []catalog.ToolRecord, matches []string) []catalog.ToolRecord {
	byID := make(map[string]int, len(tools))
	for i, t := range tools {
		byID[t.ID] = i
	}

	seen := make(map[string]bool, len(matches))
	ordered := make([]catalog.ToolRecord, 0, len(matches))
	for _, id := range matches {
		i, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, tools[i])
	}
	return ordered
}

func inCategories(t catalog.ToolRecord, categories []catalog.Category) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if t.Category == c {
			return true
		}
	}
	return false
}

func hasAllFeatures(t catalog.ToolRecord, features []string) bool {
	for _, f := range features {
		if !HasFeature(t, f) {
			return false
		}
	}
	return true
}
