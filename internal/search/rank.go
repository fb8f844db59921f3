package search

import "sort"

// rank normalizes scores, orders hits best-first with corpus order breaking
// ties, and truncates to limit.
func rank(results []Result, limit int) []Result {
	results = normalizeScores(results)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Ordinal < results[j].Ordinal
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// normalizeScores scales scores so the best hit is 1. Relative ordering is
// preserved; non-positive maxima collapse every hit to 1.
func normalizeScores(results []Result) []Result {
	if len(results) == 0 {
		return results
	}

	maxScore := results[0].Score
	for _, result := range results {
		if result.Score > maxScore {
			maxScore = result.Score
		}
	}

	normalized := make([]Result, len(results))
	for i, result := range results {
		normalized[i] = result
		if maxScore <= 0 {
			normalized[i].Score = 1.0
			continue
		}
		normalized[i].Score = result.Score / maxScore
	}

	return normalized
}
