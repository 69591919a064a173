package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"desiiseb/internal/httputil"
	"desiiseb/internal/model"
	"desiiseb/internal/service"
	"desiiseb/internal/transport/http/middleware"
)

// InteractionHandler serves the like, repost and bookmark toggles.
//
// Toggles return 200 whether or not state changed: the "changed" field tells
// the client if this request did the work or found it already done.
type InteractionHandler struct {
	interactionService *service.InteractionService
}

func NewInteractionHandler(interactionService *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactionService: interactionService}
}

// Like likes a post
// POST /posts/{id}/like
func (h *InteractionHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.interactionService.Like)
}

// Unlike removes a like
// DELETE /posts/{id}/like
func (h *InteractionHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.interactionService.Unlike)
}

// Repost reposts a post to the caller's followers
// POST /posts/{id}/repost
func (h *InteractionHandler) Repost(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.interactionService.Repost)
}

// Unrepost withdraws a repost
// DELETE /posts/{id}/repost
func (h *InteractionHandler) Unrepost(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.interactionService.Unrepost)
}

// Bookmark saves a post privately
// POST /posts/{id}/bookmark
func (h *InteractionHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.interactionService.Bookmark)
}

// Unbookmark removes a saved post
// DELETE /posts/{id}/bookmark
func (h *InteractionHandler) Unbookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.interactionService.Unbookmark)
}

func (h *InteractionHandler) toggle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, postID, userID int64) (bool, error)) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	changed, err := op(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to update interaction")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{
		"changed": changed,
	})
}

// GetLikers returns a page of users who liked a post
// GET /posts/{id}/likes?cursor=...&limit=...
func (h *InteractionHandler) GetLikers(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	cursor, limit := parsePagination(r)
	likers, err := h.interactionService.GetPostLikers(r.Context(), postID, cursor, limit)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get likers")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, likers)
}

// ListBookmarks returns the caller's saved posts
// GET /bookmarks?cursor=...&limit=...
func (h *InteractionHandler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	cursor, limit := parsePagination(r)
	bookmarks, err := h.interactionService.ListBookmarks(r.Context(), userID, cursor, limit)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get bookmarks")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, bookmarks)
}
