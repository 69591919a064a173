package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"desiiseb/internal/httputil"
	"desiiseb/internal/model"
	"desiiseb/internal/service"
)

// GiphyHandler proxies the GIF/sticker picker endpoints.
type GiphyHandler struct {
	giphyService *service.GiphyService
}

func NewGiphyHandler(giphyService *service.GiphyService) *GiphyHandler {
	return &GiphyHandler{giphyService: giphyService}
}

// Search searches gifs or stickers
// GET /giphy/{kind}/search?q=...&limit=...
func (h *GiphyHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		httputil.WriteBadRequest(w, "Search query is required")
		return
	}

	resp, err := h.giphyService.Search(r.Context(), chi.URLParam(r, "kind"), q, parseLimit(r))
	if err != nil {
		h.writeGiphyError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// Trending returns trending gifs or stickers
// GET /giphy/{kind}/trending?limit=...
func (h *GiphyHandler) Trending(w http.ResponseWriter, r *http.Request) {
	resp, err := h.giphyService.Trending(r.Context(), chi.URLParam(r, "kind"), parseLimit(r))
	if err != nil {
		h.writeGiphyError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *GiphyHandler) writeGiphyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidGiphyKind):
		httputil.WriteBadRequest(w, "Invalid media kind. Allowed: gifs, stickers")
	case errors.Is(err, model.ErrGiphyDisabled):
		httputil.WriteError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "GIF search is not configured")
	default:
		httputil.WriteInternalError(w, "Failed to reach GIF provider")
	}
}

func parseLimit(r *http.Request) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0
	}
	return limit
}
