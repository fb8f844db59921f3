package session

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/filter"
	"github.com/tulznet/tulz/internal/obs"
	"github.com/tulznet/tulz/internal/search"
)

// Searcher runs free-text queries. search.Index and *search.Loader both
// satisfy it.
type Searcher interface {
	Search(query string, limit int) []search.Result
}

// Tracker receives submitted searches.
type Tracker interface {
	TrackSearch(query string, results int)
}

// Options configure a Controller. Every field is optional.
type Options struct {
	Catalog   *catalog.Catalog
	Searcher  Searcher
	Navigator Navigator
	Store     KVStore
	Tracker   Tracker

	// Debounce is the settle delay; <= 0 uses DefaultDebounce.
	Debounce time.Duration

	// RecentLimit caps recent searches; <= 0 uses DefaultRecentLimit.
	RecentLimit int

	// SearchLimit caps displayed results of a query after filtering; <= 0
	// uses search.DefaultLimit.
	SearchLimit int

	Logger *zerolog.Logger
}

// Results is the derived view of a state.
type Results struct {
	Query    string               `json:"query"`
	Tools    []catalog.ToolRecord `json:"tools"`
	Articles []catalog.Entry      `json:"articles"`
}

// Controller owns a SearchState and is the only thing that mutates it.
// Navigator and Tracker are called with the controller lock held and must
// not call back into it.
type Controller struct {
	mu        sync.Mutex
	state     SearchState
	lastURL   string
	catalog   *catalog.Catalog
	searcher  Searcher
	navigator Navigator
	tracker   Tracker
	recent    *RecentStore
	debouncer *Debouncer
	limit     int
	logger    zerolog.Logger
}

// NewController creates a controller whose initial filters come from the
// URL and whose recent searches come from storage.
func NewController(initial url.Values, opts Options) *Controller {
	logger := obs.Logger("session")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	c := &Controller{
		state:     Decode(initial),
		catalog:   opts.Catalog,
		searcher:  opts.Searcher,
		navigator: opts.Navigator,
		tracker:   opts.Tracker,
		recent:    NewRecentStore(opts.Store, opts.RecentLimit, logger),
		limit:     opts.SearchLimit,
		logger:    logger,
	}
	c.debouncer = NewDebouncer(opts.Debounce, c.commit)
	c.state.RecentSearches = c.recent.Load()
	c.lastURL = Encode(c.state).Encode()

	return c
}

// Type records a keystroke. The committed query follows after the debounce
// window if no further input arrives.
func (c *Controller) Type(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Query = q
	c.state.IsSearching = true
	c.debouncer.Input(q)
}

// commit is the debouncer callback.
func (c *Controller) commit(q string, seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.debouncer.Seq() {
		return
	}
	c.state.DebouncedQuery = q
	c.state.IsSearching = false
	c.syncURL()
}

// Flush commits pending input immediately.
func (c *Controller) Flush() {
	c.debouncer.Flush()
}

// SetCategories replaces the category selection.
func (c *Controller) SetCategories(categories []catalog.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Categories = normalizeCategories(categories)
	c.syncURL()
}

// ToggleCategory adds category if absent, otherwise removes it.
func (c *Controller) ToggleCategory(category catalog.Category) {
	cat, ok := catalog.ParseCategory(string(category))
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]catalog.Category, 0, len(c.state.Categories)+1)
	found := false
	for _, existing := range c.state.Categories {
		if existing == cat {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, cat)
	}
	c.state.Categories = next
	c.syncURL()
}

// SetFeatures replaces the feature selection.
func (c *Controller) SetFeatures(features []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Features = normalizeFeatures(features)
	c.syncURL()
}

// ToggleFeature adds feature if absent, otherwise removes it.
func (c *Controller) ToggleFeature(feature string) {
	feature = strings.ToLower(strings.TrimSpace(feature))
	if feature == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]string, 0, len(c.state.Features)+1)
	found := false
	for _, existing := range c.state.Features {
		if existing == feature {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, feature)
	}
	c.state.Features = next
	c.syncURL()
}

// SetSort changes the sort order. Unknown orders are ignored.
func (c *Controller) SetSort(order filter.SortOrder) {
	parsed, ok := filter.ParseSortOrder(string(order))
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Sort = parsed
	c.syncURL()
}

// Submit commits q immediately, records it as a recent search and reports
// it to the tracker. Blank queries are ignored.
func (c *Controller) Submit(q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.debouncer.Cancel()
	c.state.Query = q
	c.state.DebouncedQuery = q
	c.state.IsSearching = false
	c.state.RecentSearches = c.recent.Add(c.state.RecentSearches, q)
	c.syncURL()

	if c.tracker != nil {
		res := c.results(c.state)
		c.tracker.TrackSearch(q, len(res.Tools)+len(res.Articles))
	}
}

// ClearAll resets query, categories, features and sort in one update.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.debouncer.Cancel()
	recent := c.state.RecentSearches
	c.state = DefaultState()
	c.state.RecentSearches = recent
	c.syncURL()
}

// ClearRecent empties the recent-search list.
func (c *Controller) ClearRecent() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.RecentSearches = []string{}
	c.recent.Clear()
}

// State returns a copy of the current state.
func (c *Controller) State() SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// URL returns the canonical query parameters of the current state.
func (c *Controller) URL() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Encode(c.state)
}

// Results runs the committed query and the filter pipeline.
func (c *Controller) Results() Results {
	c.mu.Lock()
	snapshot := c.state.Clone()
	c.mu.Unlock()

	return c.results(snapshot)
}

func (c *Controller) results(s SearchState) Results {
	return Compute(c.catalog, c.searcher, s, c.limit)
}

// Compute derives results for s without a controller. With no committed
// query every tool passes to the filters; with a query only matching tools
// do, and matching articles are listed separately. Filters see every hit;
// limit caps query results only after filtering.
func Compute(cat *catalog.Catalog, searcher Searcher, s SearchState, limit int) Results {
	criteria := s.Criteria()
	res := Results{
		Query:    criteria.Query,
		Tools:    []catalog.ToolRecord{},
		Articles: []catalog.Entry{},
	}

	var matches []string
	if criteria.Query != "" {
		matches = []string{}
		if searcher != nil {
			for _, r := range searcher.Search(criteria.Query, search.AllHits) {
				switch r.Entry.Type {
				case catalog.EntryBlog:
					res.Articles = append(res.Articles, r.Entry)
				default:
					matches = append(matches, r.Entry.ID)
				}
			}
		}
	}

	res.Tools = filter.Apply(cat.Tools(), matches, criteria)

	if criteria.Query != "" {
		if limit <= 0 {
			limit = search.DefaultLimit
		}
		if len(res.Tools) > limit {
			res.Tools = res.Tools[:limit]
		}
		if len(res.Articles) > limit {
			res.Articles = res.Articles[:limit]
		}
	}
	return res
}

// syncURL replaces the URL when the encoded state changed. Caller holds mu.
func (c *Controller) syncURL() {
	values := Encode(c.state)
	encoded := values.Encode()
	if encoded == c.lastURL {
		return
	}
	c.lastURL = encoded

	if c.navigator != nil {
		c.navigator.Replace(values)
	}
	c.logger.Debug().Str("url", encoded).Msg("state synced")
}

// Close stops any pending debounce timer.
func (c *Controller) Close() {
	c.debouncer.Cancel()
}
