package api

import (
	"errors"
	"net/http"
	"strconv"

	"aircraft-gateway/internal/aircraft"
	"aircraft-gateway/middleware/ratelimit/domain"
	"aircraft-gateway/middleware/shaping"

	"github.com/go-chi/chi/v5"
)

const defaultTrackingLimit = 100

type handlers struct {
	repo    aircraft.Repository
	gate    *shaping.Gate
	version string
	clock   domain.Clock
}

type healthResponse struct {
	OK      bool   `json:"ok"`
	TS      int64  `json:"ts"`
	Message string `json:"message"`
	Version string `json:"version"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		OK:      true,
		TS:      h.clock.Now().UnixMilli(),
		Message: "Aircraft history API is running",
		Version: h.version,
	})
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	tail := aircraft.NormalizeTail(chi.URLParam(r, "tail"))
	s, err := h.repo.Summary(r.Context(), tail)
	if err != nil {
		h.lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tail": tail, "summary": s})
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	tail := aircraft.NormalizeTail(chi.URLParam(r, "tail"))
	hist, err := h.repo.History(r.Context(), tail)
	if err != nil {
		h.lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tail": tail, "history": hist})
}

func (h *handlers) live(w http.ResponseWriter, r *http.Request) {
	tail := aircraft.NormalizeTail(chi.URLParam(r, "tail"))
	pos, err := h.repo.Live(r.Context(), tail)
	if err != nil {
		h.lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tail": tail, "live": pos})
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	res, err := h.repo.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": res, "total": len(res)})
}

func (h *handlers) trackingLive(w http.ResponseWriter, r *http.Request) {
	limit := defaultTrackingLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	pos, err := h.repo.LivePositions(r.Context(), limit)
	if err != nil {
		h.lookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"positions": pos})
}

func (h *handlers) lookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, aircraft.ErrNotFound):
		writeError(w, http.StatusNotFound, "Aircraft not found")
	case errors.Is(err, aircraft.ErrNoLiveData):
		writeError(w, http.StatusNotFound, "Live data not found")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

type adminStatsResponse struct {
	RateLimit shaping.RateLimitStats `json:"rateLimit"`
	Cache     shaping.CacheStats     `json:"cache"`
}

func (h *handlers) adminStats(w http.ResponseWriter, _ *http.Request) {
	if h.gate == nil {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, adminStatsResponse{
		RateLimit: h.gate.RateLimitStats(),
		Cache:     h.gate.CacheStats(),
	})
}

func (h *handlers) adminClearCache(w http.ResponseWriter, _ *http.Request) {
	if h.gate != nil {
		h.gate.ClearCache()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *handlers) adminClearRateLimits(w http.ResponseWriter, _ *http.Request) {
	if h.gate != nil {
		h.gate.ClearRateLimits()
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
