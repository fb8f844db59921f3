/*
Package storage provides data models for the search history system.
*/
package storage

import "time"

// SearchRecord represents a search query for analytics.
type SearchRecord struct {
	// SearchID is a unique, time-sortable identifier for this search (ULID).
	SearchID string `json:"search_id"`

	// QueryHash is the SHA256 hash of the search query for privacy.
	QueryHash string `json:"query_hash"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`

	// ResultsCount is the number of results returned.
	ResultsCount int `json:"results_count"`
}

// SearchStats summarizes recorded searches.
type SearchStats struct {
	Total          int       `json:"total"`
	ZeroResults    int       `json:"zero_results"`
	DistinctQuery  int       `json:"distinct_queries"`
	AverageResults float64   `json:"average_results"`
	Last           time.Time `json:"last,omitempty"`
}
