/*
Package search implements fuzzy search over the tool and article corpus.

An Index is built once from the corpus and queried with free text. Two
backends implement it: a Bleve in-memory index with weighted fuzzy and prefix
matching (the default), and a subsequence matcher for command-palette style
lookups. Callers only see the Index interface.
*/
package search

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/tulznet/tulz/internal/catalog"
)

// Backend names accepted in Config.
const (
	BackendBleve       = "bleve"
	BackendSubsequence = "subsequence"
)

// Defaults used when a Config field is zero.
const (
	DefaultLimit              = 10
	DefaultThreshold          = 0.3
	DefaultMinMatchCharLength = 2
)

// AllHits as a limit returns every matching entry.
const AllHits = math.MaxInt

// Result represents a single search hit with its normalized relevance.
type Result struct {
	Entry catalog.Entry `json:"entry"`

	// Score is in [0, 1]; the best hit of a query scores 1.
	Score float64 `json:"score"`

	// Ordinal is the entry's position in the corpus the index was built from.
	Ordinal int `json:"-"`
}

// FieldWeights sets the relative importance of each indexed field.
type FieldWeights struct {
	Title       float64 `json:"title"`
	Description float64 `json:"description"`
	Category    float64 `json:"category"`
	Tags        float64 `json:"tags"`
	Content     float64 `json:"content"`
}

// DefaultFieldWeights weights titles highest, descriptions next, and
// category, tags and article text lowest.
var DefaultFieldWeights = FieldWeights{
	Title:       0.5,
	Description: 0.3,
	Category:    0.1,
	Tags:        0.1,
	Content:     0.05,
}

// Config controls index construction and matching.
type Config struct {
	Weights FieldWeights

	// Threshold ranges from 0 (exact terms only) to 1 (very permissive).
	Threshold float64

	// MinMatchCharLength drops query terms shorter than this.
	MinMatchCharLength int

	// DefaultLimit caps results when the caller passes limit <= 0.
	DefaultLimit int

	Backend string
}

// DefaultConfig returns the standard search configuration.
func DefaultConfig() Config {
	return Config{
		Weights:            DefaultFieldWeights,
		Threshold:          DefaultThreshold,
		MinMatchCharLength: DefaultMinMatchCharLength,
		DefaultLimit:       DefaultLimit,
		Backend:            BackendBleve,
	}
}

// Validate reports configuration values that cannot produce a usable index.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %v", c.Threshold)
	}
	if c.MinMatchCharLength < 0 {
		return fmt.Errorf("minMatchCharLength must not be negative")
	}
	w := c.Weights
	if w.Title < 0 || w.Description < 0 || w.Category < 0 || w.Tags < 0 || w.Content < 0 {
		return fmt.Errorf("field weights must not be negative")
	}
	if w.Title+w.Description+w.Category+w.Tags+w.Content == 0 {
		return fmt.Errorf("at least one field weight must be positive")
	}
	switch c.Backend {
	case "", BackendBleve, BackendSubsequence:
	default:
		return fmt.Errorf("unknown search backend %q", c.Backend)
	}
	return nil
}

func (c Config) limit(limit int) int {
	if limit > 0 {
		return limit
	}
	if c.DefaultLimit > 0 {
		return c.DefaultLimit
	}
	return DefaultLimit
}

// Index is a queryable corpus. Implementations must return an empty result
// for blank queries and must never panic on a nil receiver.
type Index interface {
	// Search returns up to limit hits, best first. limit <= 0 means the
	// configured default.
	Search(query string, limit int) []Result

	// Len returns the number of indexed entries.
	Len() int

	// Close releases resources.
	Close() error
}

// Build constructs the index for cfg.Backend.
func Build(entries []catalog.Entry, cfg Config) (Index, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case BackendSubsequence:
		return NewSubsequenceIndex(entries, cfg), nil
	default:
		idx, err := NewIndexer(entries, cfg)
		if err != nil {
			return nil, err
		}
		return idx, nil
	}
}

// queryTerms lowercases q and splits it on anything that is not a letter or
// digit, dropping terms shorter than minLen runes.
func queryTerms(q string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minLen {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
