package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"desiiseb/internal/httputil"
	"desiiseb/internal/model"
	"desiiseb/internal/service"
	"desiiseb/internal/transport/http/middleware"
)

// FeedHandler serves the paginated timeline scopes.
type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GetFeed serves the home and global timelines
// GET /feed?scope=home|global&cursor=...&limit=...
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	scopeKind := r.URL.Query().Get("scope")
	if scopeKind == "" {
		scopeKind = model.ScopeHome
	}
	if scopeKind != model.ScopeHome && scopeKind != model.ScopeGlobal {
		httputil.WriteBadRequest(w, "Invalid feed scope. Allowed: home, global")
		return
	}

	viewerID := middleware.ViewerID(r.Context())
	if scopeKind == model.ScopeHome && viewerID == nil {
		httputil.WriteUnauthorized(w, "The home feed requires authentication")
		return
	}

	cursor, limit := parsePagination(r)
	feed, err := h.feedService.GetFeed(r.Context(), viewerID, model.Scope{Kind: scopeKind}, cursor, limit)
	if err != nil {
		if errors.Is(err, model.ErrInvalidScope) {
			httputil.WriteBadRequest(w, "Invalid feed scope")
			return
		}
		httputil.WriteInternalError(w, "Failed to get feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}

// GetUserPosts serves a user's own posts and reposts
// GET /users/{id}/posts?cursor=...&limit=...
func (h *FeedHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	authorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	cursor, limit := parsePagination(r)
	scope := model.Scope{Kind: model.ScopeAuthor, AuthorID: authorID}
	feed, err := h.feedService.GetFeed(r.Context(), middleware.ViewerID(r.Context()), scope, cursor, limit)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get user posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}

// GetReplies serves the replies under a post
// GET /posts/{id}/replies?cursor=...&limit=...
func (h *FeedHandler) GetReplies(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	cursor, limit := parsePagination(r)
	scope := model.Scope{Kind: model.ScopeThread, ParentID: postID}
	feed, err := h.feedService.GetFeed(r.Context(), middleware.ViewerID(r.Context()), scope, cursor, limit)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get replies")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}

// GetHashtagPosts serves posts carrying a tag, newest first
// GET /hashtags/{tag}/posts?cursor=...&limit=...
func (h *FeedHandler) GetHashtagPosts(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		httputil.WriteBadRequest(w, "Hashtag is required")
		return
	}

	cursor, limit := parsePagination(r)
	feed, err := h.feedService.GetHashtagFeed(r.Context(), middleware.ViewerID(r.Context()), tag, cursor, limit)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get hashtag posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}

// parsePagination reads the cursor and limit query params shared by every
// paginated endpoint. A missing or bad limit falls back to the service default.
func parsePagination(r *http.Request) (*string, int) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}
	return cursor, limit
}
