package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/skelly-dev/doxsearch/internal/logger"
	"github.com/skelly-dev/doxsearch/internal/searchdata"
)

// Lookup modes accepted by the search endpoint.
const (
	ModePrefix    = "prefix"
	ModeSubstring = "substring"
)

const suggestionLimit = 5

// SearchResponse is the body of a search request.
type SearchResponse struct {
	Query       string                  `json:"query"`
	Mode        string                  `json:"mode"`
	Section     string                  `json:"section"`
	Total       int                     `json:"total"`
	Results     []searchdata.Result     `json:"results"`
	Suggestions []searchdata.Suggestion `json:"suggestions,omitempty"`
}

// SectionInfo describes one section of the loaded index.
type SectionInfo struct {
	searchdata.Section
	Keys    int      `json:"keys"`
	Letters []string `json:"letters"`
}

// Handler serves lookups against the currently loaded index.
type Handler struct {
	index        atomic.Pointer[searchdata.Index]
	metrics      *Metrics
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewHandler returns a handler serving idx.
func NewHandler(idx *searchdata.Index, metrics *Metrics, defaultLimit, maxLimit int) *Handler {
	h := &Handler{
		metrics:      metrics,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.WithComponent("search-handler"),
	}
	h.Swap(idx)
	return h
}

// Swap replaces the served index. In-flight requests finish on the index they
// started with.
func (h *Handler) Swap(idx *searchdata.Index) {
	h.index.Store(idx)
	if h.metrics == nil || idx == nil {
		return
	}
	h.metrics.IndexEntries.Reset()
	for _, section := range idx.Sections() {
		if t, ok := idx.Table(section.Name); ok {
			h.metrics.IndexEntries.WithLabelValues(section.Name).Set(float64(t.Len()))
		}
	}
}

// Index returns the served index.
func (h *Handler) Index() *searchdata.Index {
	return h.index.Load()
}

// Search handles GET /api/v1/search?q=&limit=&mode=&section=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())
	params := r.URL.Query()

	query := params.Get("q")
	if query == "" {
		h.observe(ModePrefix, "error", 0)
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	mode := params.Get("mode")
	if mode == "" {
		mode = ModePrefix
	}
	if mode != ModePrefix && mode != ModeSubstring {
		h.observe(ModePrefix, "error", 0)
		writeError(w, http.StatusBadRequest, "mode must be 'prefix' or 'substring'")
		return
	}

	limit := h.defaultLimit
	if raw := params.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.observe(mode, "error", 0)
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if h.maxLimit > 0 && limit > h.maxLimit {
		limit = h.maxLimit
	}

	section := params.Get("section")
	if section == "" {
		section = searchdata.SectionAll
	}
	idx := h.Index()
	table, ok := idx.Table(section)
	if !ok {
		h.observe(mode, "error", 0)
		writeError(w, http.StatusNotFound, "section "+strconv.Quote(section)+" has no entries")
		return
	}

	var results []searchdata.Result
	if mode == ModeSubstring {
		results = table.LookupSubstring(query)
	} else {
		results = table.Lookup(query)
	}

	resp := SearchResponse{
		Query:   query,
		Mode:    mode,
		Section: section,
		Total:   len(results),
		Results: results,
	}
	if len(resp.Results) > limit {
		resp.Results = resp.Results[:limit]
	}
	if resp.Results == nil {
		resp.Results = []searchdata.Result{}
	}
	outcome := "hit"
	if resp.Total == 0 {
		outcome = "zero_result"
		resp.Suggestions = table.Suggest(query, suggestionLimit)
	}
	h.observe(mode, outcome, len(resp.Results))

	log.Info("lookup completed",
		"query", query,
		"mode", mode,
		"section", section,
		"total", resp.Total,
		"returned", len(resp.Results),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, resp)
}

// Sections handles GET /api/v1/sections.
func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	idx := h.Index()
	out := make([]SectionInfo, 0, len(idx.Sections()))
	for _, section := range idx.Sections() {
		info := SectionInfo{Section: section, Letters: idx.Letters(section.Name)}
		if t, ok := idx.Table(section.Name); ok {
			info.Keys = t.Len()
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": out})
}

// Live handles GET /health/live.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. The server is ready once an index with an
// "all" section is loaded.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	idx := h.Index()
	if idx == nil || idx.All() == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no index"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "keys": idx.All().Len()})
}

func (h *Handler) observe(mode, outcome string, returned int) {
	if h.metrics == nil {
		return
	}
	h.metrics.LookupsTotal.WithLabelValues(mode, outcome).Inc()
	if outcome != "error" {
		h.metrics.LookupResults.Observe(float64(returned))
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
