/*
Package analytics records anonymous search activity in the background.

Query text never leaves this package: events carry a SHA256 hash of the
normalized query, a ULID search id and the number of results shown.
*/
package analytics

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/tulznet/tulz/internal/storage"
)

// SearchEvent is one submitted search.
type SearchEvent struct {
	// SearchID is a ULID, sortable by creation time.
	SearchID string

	// QueryHash is the SHA256 hash of the lowercased, trimmed query.
	QueryHash string

	// Timestamp is when the search was submitted.
	Timestamp time.Time

	// ResultsCount is the number of results shown for the query.
	ResultsCount int
}

var (
	entropyMu sync.Mutex
	entropy   io.Reader = ulid.Monotonic(rand.Reader, 0)
)

// newSearchID returns a ULID for t. Monotonic entropy is not safe for
// concurrent use, hence the lock.
func newSearchID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewSearchEvent creates an event for query with results hits.
func NewSearchEvent(query string, results int) SearchEvent {
	now := time.Now()
	return SearchEvent{
		SearchID:     newSearchID(now),
		QueryHash:    hashQuery(query),
		Timestamp:    now,
		ResultsCount: results,
	}
}

// ToStorage converts the event to the storage model.
func (e SearchEvent) ToStorage() storage.SearchRecord {
	return storage.SearchRecord{
		SearchID:     e.SearchID,
		QueryHash:    e.QueryHash,
		Timestamp:    e.Timestamp,
		ResultsCount: e.ResultsCount,
	}
}

// hashQuery hashes the query so "JSON " and "json" count as one.
func hashQuery(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return ""
	}
	return storage.HashQuery(q)
}
