package session

import (
	"net/url"
	"strings"

	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/filter"
)

// Query string parameters.
const (
	ParamSearch   = "search"
	ParamCategory = "category"
	ParamSort     = "sort"
	ParamFeatures = "features"
)

// Navigator replaces the current navigation entry. It never pushes history.
type Navigator interface {
	Replace(values url.Values)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(values url.Values)

// Replace calls f(values).
func (f NavigatorFunc) Replace(values url.Values) { f(values) }

// Encode serializes the non-default parts of s. Defaults are omitted so
// equal states always produce the same link.
func Encode(s SearchState) url.Values {
	v := url.Values{}

	if q := strings.TrimSpace(s.DebouncedQuery); q != "" {
		v.Set(ParamSearch, q)
	}

	if cats := normalizeCategories(s.Categories); len(cats) > 0 {
		names := make([]string, len(cats))
		for i, c := range cats {
			names[i] = string(c)
		}
		v.Set(ParamCategory, strings.Join(names, ","))
	}

	if s.Sort != "" && s.Sort != filter.DefaultSort {
		if order, ok := filter.ParseSortOrder(string(s.Sort)); ok {
			v.Set(ParamSort, string(order))
		}
	}

	if features := normalizeFeatures(s.Features); len(features) > 0 {
		v.Set(ParamFeatures, strings.Join(features, ","))
	}

	return v
}

// Decode builds a state from query parameters. Unknown parameters, unknown
// categories and unknown sort tokens are ignored.
func Decode(v url.Values) SearchState {
	s := DefaultState()

	q := strings.TrimSpace(v.Get(ParamSearch))
	s.Query = q
	s.DebouncedQuery = q

	if raw := v.Get(ParamCategory); raw != "" {
		var cats []catalog.Category
		for _, part := range strings.Split(raw, ",") {
			if c, ok := catalog.ParseCategory(part); ok {
				cats = append(cats, c)
			}
		}
		s.Categories = normalizeCategories(cats)
	}

	if order, ok := filter.ParseSortOrder(v.Get(ParamSort)); ok {
		s.Sort = order
	}

	if raw := v.Get(ParamFeatures); raw != "" {
		s.Features = normalizeFeatures(strings.Split(raw, ","))
	}

	return s
}
