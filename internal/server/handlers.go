package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/session"
	"github.com/tulznet/tulz/internal/version"
)

// readiness is implemented by searchers that load in the background.
type readiness interface {
	Ready() bool
}

// Options configure a Handler. Catalog is required.
type Options struct {
	Catalog     *catalog.Catalog
	Searcher    session.Searcher
	Store       session.KVStore
	Tracker     session.Tracker
	RecentLimit int
	SearchLimit int
	Logger      zerolog.Logger
}

// Handler contains HTTP handlers for the API
type Handler struct {
	catalog  *catalog.Catalog
	searcher session.Searcher
	tracker  session.Tracker
	limit    int
	logger   zerolog.Logger

	// recentMu serializes read-modify-write of the recent list
	recentMu sync.Mutex
	recent   *session.RecentStore
}

// NewHandler creates a new HTTP handler
func NewHandler(opts Options) *Handler {
	return &Handler{
		catalog:  opts.Catalog,
		searcher: opts.Searcher,
		tracker:  opts.Tracker,
		limit:    opts.SearchLimit,
		logger:   opts.Logger,
		recent:   session.NewRecentStore(opts.Store, opts.RecentLimit, opts.Logger),
	}
}

// Router mounts every route on a chi mux.
func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Server", version.UserAgent()))

	r.Get("/health", h.HandleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.HandleSearch)
		r.Get("/tools/{id}", h.HandleTool)
		r.Get("/recent", h.HandleRecent)
		r.Post("/recent", h.HandleAddRecent)
		r.Delete("/recent", h.HandleClearRecent)
	})

	return r
}

// HandleHealth reports catalog size and index readiness
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	ready := h.searcher != nil
	if rd, ok := h.searcher.(readiness); ok {
		ready = rd.Ready()
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "healthy",
		Version:    version.Get().Version,
		ToolCount:  h.catalog.Len(),
		IndexReady: ready,
	})
}

// HandleSearch decodes the URL contract, derives results and echoes the
// canonical query string back. Malformed parameters are ignored.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	state := session.Decode(r.URL.Query())
	res := session.Compute(h.catalog, h.searcher, state, h.limit)

	if res.Query != "" && h.tracker != nil {
		h.tracker.TrackSearch(res.Query, len(res.Tools)+len(res.Articles))
	}

	h.logger.Info().
		Str("query", res.Query).
		Int("tools", len(res.Tools)).
		Int("articles", len(res.Articles)).
		Msg("search completed")

	writeJSON(w, http.StatusOK, SearchResponse{
		Query:      res.Query,
		Categories: nonNilCategories(state.Categories),
		Features:   nonNilStrings(state.Features),
		Sort:       state.Sort,
		URL:        session.Encode(state).Encode(),
		Tools:      res.Tools,
		Articles:   res.Articles,
		Count:      len(res.Tools) + len(res.Articles),
	})
}

// HandleTool returns a single catalog record
func (h *Handler) HandleTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tool, ok := h.catalog.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, "tool not found", "NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// HandleRecent lists recent searches
func (h *Handler) HandleRecent(w http.ResponseWriter, _ *http.Request) {
	h.recentMu.Lock()
	list := h.recent.Load()
	h.recentMu.Unlock()

	writeJSON(w, http.StatusOK, RecentResponse{Recent: nonNilStrings(list)})
}

// HandleAddRecent records a submitted query
func (h *Handler) HandleAddRecent(w http.ResponseWriter, r *http.Request) {
	var req RecentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid recent request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required", "MISSING_QUERY")
		return
	}

	h.recentMu.Lock()
	list := h.recent.Add(h.recent.Load(), req.Query)
	h.recentMu.Unlock()

	writeJSON(w, http.StatusOK, RecentResponse{Recent: list})
}

// HandleClearRecent forgets every recent search
func (h *Handler) HandleClearRecent(w http.ResponseWriter, _ *http.Request) {
	h.recentMu.Lock()
	h.recent.Clear()
	h.recentMu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status code
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilCategories(c []catalog.Category) []catalog.Category {
	if c == nil {
		return []catalog.Category{}
	}
	return c
}
