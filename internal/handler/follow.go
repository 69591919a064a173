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

// FollowHandler serves follow-graph endpoints.
type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow follows a user
// POST /users/{id}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	followingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	changed, err := h.followService.Follow(r.Context(), followerID, followingID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "You cannot follow yourself")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			httputil.WriteInternalError(w, "Failed to follow user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{
		"changed": changed,
	})
}

// Unfollow unfollows a user
// DELETE /users/{id}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	followingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	changed, err := h.followService.Unfollow(r.Context(), followerID, followingID)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to unfollow user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{
		"changed": changed,
	})
}

// GetFollowers returns a page of a user's followers
// GET /users/{id}/followers?cursor=...&limit=...
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.followList(w, r, h.followService.GetFollowers)
}

// GetFollowing returns a page of accounts a user follows
// GET /users/{id}/following?cursor=...&limit=...
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.followList(w, r, h.followService.GetFollowing)
}

func (h *FollowHandler) followList(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID int64, cursor *string, limit int) (*model.FollowListResponse, error)) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	cursor, limit := parsePagination(r)
	resp, err := list(r.Context(), userID, cursor, limit)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get follow list")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
