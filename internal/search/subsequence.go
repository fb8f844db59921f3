package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/tulznet/tulz/internal/catalog"
)

// fieldSource exposes one lowercased field of every entry to the fuzzy
// matcher.
type fieldSource []string

func (s fieldSource) String(i int) string { return s[i] }
func (s fieldSource) Len() int            { return len(s) }

// SubsequenceIndex matches query terms as character subsequences of entry
// fields. A term matches a field when its characters appear in order and
// close together; the allowed gap grows with Config.Threshold.
type SubsequenceIndex struct {
	entries []catalog.Entry
	fields  []fieldSource
	weights []float64
	cfg     Config
}

// NewSubsequenceIndex prepares the field sources for entries.
func NewSubsequenceIndex(entries []catalog.Entry, cfg Config) *SubsequenceIndex {
	w := cfg.Weights
	extract := []struct {
		weight float64
		get    func(catalog.Entry) string
	}{
		{w.Title, func(e catalog.Entry) string { return e.Title }},
		{w.Description, func(e catalog.Entry) string { return e.Description }},
		{w.Category, func(e catalog.Entry) string { return e.Category }},
		{w.Tags, func(e catalog.Entry) string { return strings.Join(e.Tags, " ") }},
		{w.Content, func(e catalog.Entry) string { return e.Content }},
	}

	idx := &SubsequenceIndex{
		entries: append([]catalog.Entry(nil), entries...),
		cfg:     cfg,
	}
	for _, x := range extract {
		if x.weight <= 0 {
			continue
		}
		src := make(fieldSource, len(entries))
		for i, e := range entries {
			src[i] = strings.ToLower(x.get(e))
		}
		idx.fields = append(idx.fields, src)
		idx.weights = append(idx.weights, x.weight)
	}
	return idx
}

// Search returns entries in which every term matches some field.
func (s *SubsequenceIndex) Search(q string, limit int) []Result {
	if s == nil || len(s.entries) == 0 {
		return nil
	}

	terms := queryTerms(q, s.cfg.MinMatchCharLength)
	if len(terms) == 0 {
		return nil
	}

	minCompactness := 1 - s.cfg.Threshold
	scores := make([]float64, len(s.entries))
	matchedTerms := make([]int, len(s.entries))

	for _, term := range terms {
		termScore := make([]float64, len(s.entries))
		for f, src := range s.fields {
			for _, m := range fuzzy.FindFrom(term, src) {
				c := compactness(term, m.MatchedIndexes)
				if c < minCompactness {
					continue
				}
				termScore[m.Index] += s.weights[f] * c
			}
		}
		for i, sc := range termScore {
			if sc > 0 {
				scores[i] += sc
				matchedTerms[i]++
			}
		}
	}

	var results []Result
	for i, sc := range scores {
		if matchedTerms[i] != len(terms) {
			continue
		}
		results = append(results, Result{
			Entry:   s.entries[i],
			Score:   sc,
			Ordinal: i,
		})
	}

	return rank(results, s.cfg.limit(limit))
}

// compactness is the term length over the span of its matched characters:
// 1 for a contiguous match, approaching 0 as the characters spread out.
func compactness(term string, matched []int) float64 {
	if len(matched) == 0 {
		return 0
	}
	span := matched[len(matched)-1] - matched[0] + 1
	if span <= 0 {
		return 0
	}
	c := float64(len(term)) / float64(span)
	if c > 1 {
		c = 1
	}
	return c
}

// Len returns the number of indexed entries.
func (s *SubsequenceIndex) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Close is a no-op; the index holds no external resources.
func (s *SubsequenceIndex) Close() error { return nil }
