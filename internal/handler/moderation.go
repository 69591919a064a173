package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"desiiseb/internal/httputil"
	"desiiseb/internal/model"
	"desiiseb/internal/service"
	"desiiseb/internal/transport/http/middleware"
)

// ModerationHandler serves block and report endpoints.
type ModerationHandler struct {
	moderationService *service.ModerationService
}

func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// Block blocks a user and severs follows both ways
// POST /users/{id}/block
func (h *ModerationHandler) Block(w http.ResponseWriter, r *http.Request) {
	blockerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	blockedID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	changed, err := h.moderationService.Block(r.Context(), blockerID, blockedID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotBlockSelf):
			httputil.WriteBadRequest(w, "You cannot block yourself")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			httputil.WriteInternalError(w, "Failed to block user")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]bool{
		"changed": changed,
	})
}

// Unblock removes a block
// DELETE /users/{id}/block
func (h *ModerationHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	blockerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	blockedID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.moderationService.Unblock(r.Context(), blockerID, blockedID); err != nil {
		httputil.WriteInternalError(w, "Failed to unblock user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "User unblocked",
	})
}

// Report files a moderation report against a post or a user
// POST /reports
func (h *ModerationHandler) Report(w http.ResponseWriter, r *http.Request) {
	reporterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	report, err := h.moderationService.Report(r.Context(), reporterID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidReport):
			httputil.WriteBadRequest(w, "A report must target exactly one post or user")
		case errors.Is(err, model.ErrUnknownReason):
			httputil.WriteBadRequest(w, "Unknown report reason")
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			httputil.WriteInternalError(w, "Failed to file report")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, report)
}

// ListReportReasons returns the accepted report reasons for the report dialog
// GET /reports/reasons
func (h *ModerationHandler) ListReportReasons(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{
		"reasons": model.ReportReasons,
	})
}
