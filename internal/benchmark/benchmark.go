/*
Package benchmark measures query latency of the search backends.

Each backend is built over the same corpus and asked the same queries; the
report shows build time, per-query latency percentiles and hit counts so
the backends can be compared on speed and recall.

Default queries are derived from the corpus itself: the first word of each
title, a prefix of it, and the same word with one transposed letter to
exercise typo tolerance.
*/
package benchmark

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/search"
)

// DefaultIterations is the number of runs per query.
const DefaultIterations = 20

// maxDerivedQueries caps DefaultQueries.
const maxDerivedQueries = 30

// BackendResult holds the measurements of one backend.
type BackendResult struct {
	Backend   string        `json:"backend"`
	BuildTime time.Duration `json:"buildTime"`
	Queries   int           `json:"queries"`
	Runs      int           `json:"runs"`
	Mean      time.Duration `json:"mean"`
	P50       time.Duration `json:"p50"`
	P95       time.Duration `json:"p95"`
	Max       time.Duration `json:"max"`

	// ZeroHit counts queries that returned nothing.
	ZeroHit int `json:"zeroHit"`

	// AvgHits is the mean hit count per query.
	AvgHits float64 `json:"avgHits"`
}

// Report compares backends over one corpus.
type Report struct {
	Entries    int             `json:"entries"`
	Iterations int             `json:"iterations"`
	Results    []BackendResult `json:"results"`
}

// Run benchmarks every backend in backends with cfg as the base config.
func Run(entries []catalog.Entry, queries []string, backends []string, cfg search.Config, iterations int) (*Report, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if len(queries) == 0 {
		queries = DefaultQueries(entries)
	}

	report := &Report{Entries: len(entries), Iterations: iterations}
	for _, backend := range backends {
		res, err := runBackend(entries, queries, backend, cfg, iterations)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func runBackend(entries []catalog.Entry, queries []string, backend string, cfg search.Config, iterations int) (BackendResult, error) {
	cfg.Backend = backend

	start := time.Now()
	idx, err := search.Build(entries, cfg)
	if err != nil {
		return BackendResult{}, fmt.Errorf("failed to build %s index: %w", backend, err)
	}
	defer idx.Close()

	res := BackendResult{
		Backend:   backend,
		BuildTime: time.Since(start),
		Queries:   len(queries),
	}

	samples := make([]time.Duration, 0, len(queries)*iterations)
	totalHits := 0
	for _, q := range queries {
		hits := 0
		for i := 0; i < iterations; i++ {
			t0 := time.Now()
			hits = len(idx.Search(q, 0))
			samples = append(samples, time.Since(t0))
		}
		totalHits += hits
		if hits == 0 {
			res.ZeroHit++
		}
	}

	res.Runs = len(samples)
	res.Mean, res.P50, res.P95, res.Max = summarize(samples)
	if len(queries) > 0 {
		res.AvgHits = float64(totalHits) / float64(len(queries))
	}
	return res, nil
}

// summarize returns mean, median, 95th percentile and max of samples.
func summarize(samples []time.Duration) (mean, p50, p95, max time.Duration) {
	if len(samples) == 0 {
		return 0, 0, 0, 0
	}

	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, s := range sorted {
		total += s
	}
	mean = total / time.Duration(len(sorted))
	p50 = percentile(sorted, 0.50)
	p95 = percentile(sorted, 0.95)
	max = sorted[len(sorted)-1]
	return mean, p50, p95, max
}

// percentile uses nearest-rank on sorted samples.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(p*float64(len(sorted)) + 0.5)
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// DefaultQueries derives a query mix from entry titles.
func DefaultQueries(entries []catalog.Entry) []string {
	seen := make(map[string]bool)
	var queries []string
	add := func(q string) {
		if q == "" || seen[q] || len(queries) >= maxDerivedQueries {
			return
		}
		seen[q] = true
		queries = append(queries, q)
	}

	for _, e := range entries {
		fields := strings.Fields(strings.ToLower(e.Title))
		if len(fields) == 0 {
			continue
		}
		word := fields[0]
		add(word)
		if r := []rune(word); len(r) > 4 {
			add(string(r[:3]))
			add(transpose(word))
		}
	}
	return queries
}

// transpose swaps the two middle runes of word.
func transpose(word string) string {
	r := []rune(word)
	if len(r) < 2 {
		return word
	}
	i := len(r)/2 - 1
	r[i], r[i+1] = r[i+1], r[i]
	return string(r)
}
