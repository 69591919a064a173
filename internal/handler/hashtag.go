package handler

import (
	"net/http"

	"desiiseb/internal/httputil"
	"desiiseb/internal/service"
)

// HashtagHandler serves the trending tags list.
type HashtagHandler struct {
	hashtagService *service.HashtagService
}

func NewHashtagHandler(hashtagService *service.HashtagService) *HashtagHandler {
	return &HashtagHandler{hashtagService: hashtagService}
}

// Trending returns the most-used tags over the trailing 24 hours
// GET /hashtags/trending?limit=...
func (h *HashtagHandler) Trending(w http.ResponseWriter, r *http.Request) {
	tags, err := h.hashtagService.Trending(r.Context(), parseLimit(r))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get trending hashtags")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"hashtags": tags,
	})
}
