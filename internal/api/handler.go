// Package api exposes the search service over HTTP.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/niveshhub/fundsearch/internal/cache"
	"github.com/niveshhub/fundsearch/internal/engine"
	"github.com/niveshhub/fundsearch/internal/service"
	apperrors "github.com/niveshhub/fundsearch/pkg/errors"
	"github.com/niveshhub/fundsearch/pkg/logger"
)

type Handler struct {
	svc    *service.Service
	cache  *cache.QueryCache
	logger *slog.Logger
}

func New(svc *service.Service, qc *cache.QueryCache) *Handler {
	return &Handler{
		svc:    svc,
		cache:  qc,
		logger: slog.Default().With("component", "search-handler"),
	}
}

// Search handles POST with a JSON query body, or GET with q/limit/offset
// parameters for simple lookups.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var query engine.Query
	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid query body")
			return
		}
	case http.MethodGet:
		q, ok := h.queryFromParams(w, r)
		if !ok {
			return
		}
		query = q
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp, err := h.svc.Search(ctx, query)
	if err != nil {
		log.Error("search failed", "text", query.Text, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "search failed")
		return
	}

	log.Info("search completed",
		"text", query.Text,
		"total", resp.Total,
		"returned", len(resp.Results),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

// Suggest handles GET /api/v1/funds/suggest?q=<prefix>&limit=<n>.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	if text == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	suggestions, err := h.svc.Suggest(r.Context(), text, limit)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), "suggest failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}

// Health reports the service health surface.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health()
	status := http.StatusOK
	if health.Status == service.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, health)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":      hits,
		"misses":    misses,
		"hit_ratio": h.cache.HitRatio(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// queryFromParams maps GET parameters onto a Query. Only the simple surface
// is supported here; structured filters require the POST body.
func (h *Handler) queryFromParams(w http.ResponseWriter, r *http.Request) (engine.Query, bool) {
	params := r.URL.Query()
	query := engine.Query{
		Text:      params.Get("q"),
		SortBy:    params.Get("sortBy"),
		SortOrder: params.Get("sortOrder"),
	}
	if v := params.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return engine.Query{}, false
		}
		query.Limit = parsed
	}
	if v := params.Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return engine.Query{}, false
		}
		query.Offset = parsed
	}
	return query, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
