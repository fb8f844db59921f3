// Package server exposes the search session over a small JSON API.
package server

import (
	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/filter"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	ToolCount  int    `json:"tool_count"`
	IndexReady bool   `json:"index_ready"`
}

// SearchResponse is the derived view of one URL state
type SearchResponse struct {
	Query      string               `json:"query"`
	Categories []catalog.Category   `json:"categories"`
	Features   []string             `json:"features"`
	Sort       filter.SortOrder     `json:"sort"`
	URL        string               `json:"url"`
	Tools      []catalog.ToolRecord `json:"tools"`
	Articles   []catalog.Entry      `json:"articles"`
	Count      int                  `json:"count"`
}

// RecentRequest adds a query to the recent list
type RecentRequest struct {
	Query string `json:"query"`
}

// RecentResponse lists recent searches, most recent first
type RecentResponse struct {
	Recent []string `json:"recent"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
