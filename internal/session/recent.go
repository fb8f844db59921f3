package session

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// RecentSearchesKey is the storage key of the recent-search list.
	RecentSearchesKey = "tulz:recent-searches"

	// DefaultRecentLimit caps the recent-search list.
	DefaultRecentLimit = 5
)

// KVStore is the durable string store the session persists into.
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// AddRecent puts query at the front of list, removing case-insensitive
// duplicates and truncating to limit. Blank queries leave list unchanged.
// The input slice is not modified.
func AddRecent(list []string, query string, limit int) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]string{}, list...)
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	out := make([]string, 0, limit)
	out = append(out, query)
	for _, existing := range list {
		if len(out) >= limit {
			break
		}
		if strings.EqualFold(existing, query) {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// RecentStore reads and writes the recent-search list. Storage failures are
// logged and swallowed.
type RecentStore struct {
	kv     KVStore
	limit  int
	logger zerolog.Logger
}

// NewRecentStore creates a store over kv. A nil kv keeps nothing.
func NewRecentStore(kv KVStore, limit int, logger zerolog.Logger) *RecentStore {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &RecentStore{kv: kv, limit: limit, logger: logger}
}

// Load returns the stored list, or an empty list if it is missing or
// unreadable. The result is re-normalized in case the stored value was
// edited by hand or written by an older version.
func (r *RecentStore) Load() []string {
	if r == nil || r.kv == nil {
		return []string{}
	}

	raw, ok, err := r.kv.Get(RecentSearchesKey)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to read recent searches")
		return []string{}
	}
	if !ok || raw == "" {
		return []string{}
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		r.logger.Warn().Err(err).Msg("ignoring corrupt recent searches")
		return []string{}
	}

	// Rebuild oldest-first so the newest entry's casing wins.
	list := []string{}
	for i := len(stored) - 1; i >= 0; i-- {
		list = AddRecent(list, stored[i], r.limit)
	}
	return list
}

// Add records query and persists the new list, which is returned.
func (r *RecentStore) Add(current []string, query string) []string {
	list := AddRecent(current, query, r.limitOrDefault())
	r.save(list)
	return list
}

// Clear removes the stored list.
func (r *RecentStore) Clear() {
	if r == nil || r.kv == nil {
		return
	}
	if err := r.kv.Delete(RecentSearchesKey); err != nil {
		r.logger.Warn().Err(err).Msg("failed to clear recent searches")
	}
}

func (r *RecentStore) save(list []string) {
	if r == nil || r.kv == nil {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to encode recent searches")
		return
	}
	if err := r.kv.Set(RecentSearchesKey, string(data)); err != nil {
		r.logger.Warn().Err(err).Msg("failed to save recent searches")
	}
}

func (r *RecentStore) limitOrDefault() int {
	if r == nil || r.limit <= 0 {
		return DefaultRecentLimit
	}
	return r.limit
}
