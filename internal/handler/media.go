package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"desiiseb/internal/httputil"
	"desiiseb/internal/model"
	"desiiseb/internal/service"
	"desiiseb/internal/transport/http/middleware"
)

// MediaHandler serves presigned direct-to-storage uploads for post media.
type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// PresignPostUpload returns a presigned PUT URL for one media item
// POST /media/posts/presign
func (h *MediaHandler) PresignPostUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.PresignPostUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.mediaService.PresignPostUpload(r.Context(), req)
	if err != nil {
		h.writePresignError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// PresignPostUploadBatch returns presigned PUT URLs for a post's media set
// POST /media/posts/presign/batch
func (h *MediaHandler) PresignPostUploadBatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.PresignPostUploadBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.mediaService.PresignPostUploadBatch(r.Context(), req)
	if err != nil {
		h.writePresignError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *MediaHandler) writePresignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidUploadType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidMediaType, "Unsupported media content type")
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Declared file size exceeds the limit")
	case errors.Is(err, model.ErrTooManyMedia):
		httputil.WriteBadRequest(w, "A post can carry at most 4 media items")
	default:
		httputil.WriteInternalError(w, "Failed to presign upload")
	}
}
