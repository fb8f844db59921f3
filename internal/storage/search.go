package storage

import (
	"time"

	"github.com/rs/zerolog/log"
)

// RecordSearch records a search query for analytics.
func (s *SQLiteStorage) RecordSearch(search SearchRecord) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO search_history (search_id, query_hash, timestamp, results_count)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		search.SearchID,
		search.QueryHash,
		search.Timestamp.UTC().Format(time.RFC3339),
		search.ResultsCount,
	)

	if err != nil {
		log.Warn().Err(err).Str("search_id", search.SearchID).Msg("failed to record search")
	}

	return nil
}

// SearchStats summarizes searches recorded since a given time.
func (s *SQLiteStorage) SearchStats(since time.Time) (SearchStats, error) {
	if !s.enabled || s.db == nil {
		return SearchStats{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN results_count = 0 THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT query_hash),
			COALESCE(AVG(results_count), 0),
			COALESCE(MAX(timestamp), '')
		FROM search_history
		WHERE timestamp >= ?
	`

	var stats SearchStats
	var last string
	err := s.db.QueryRow(query, since.UTC().Format(time.RFC3339)).Scan(
		&stats.Total,
		&stats.ZeroResults,
		&stats.DistinctQuery,
		&stats.AverageResults,
		&last,
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to query search stats")
		return SearchStats{}, nil
	}

	if last != "" {
		if ts, err := time.Parse(time.RFC3339, last); err == nil {
			stats.Last = ts
		}
	}

	return stats, nil
}

// Cleanup removes old records based on retention policy.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339)

	if _, err := s.db.Exec("DELETE FROM search_history WHERE timestamp < ?", cutoff); err != nil {
		log.Warn().Err(err).Msg("failed to cleanup search_history")
	}

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		log.Warn().Err(err).Msg("failed to vacuum database")
	}

	return nil
}
