package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"desiiseb/internal/httputil"
	"desiiseb/internal/model"
	"desiiseb/internal/service"
	"desiiseb/internal/transport/http/middleware"
)

// UserHandler serves profile reads, edits and avatar/cover uploads.
type UserHandler struct {
	profileService *service.ProfileService
	mediaService   *service.MediaService
}

func NewUserHandler(profileService *service.ProfileService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		profileService: profileService,
		mediaService:   mediaService,
	}
}

// Me returns the currently authenticated user's profile
// GET /me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	profile, err := h.profileService.GetByID(r.Context(), userID, &userID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// GetProfile returns a profile by ID with counts and follow state
// GET /users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	profile, err := h.profileService.GetByID(r.Context(), userID, middleware.ViewerID(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// GetProfileByUsername returns a profile by its handle
// GET /users/by/{username}
func (h *UserHandler) GetProfileByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}

	profile, err := h.profileService.GetByUsername(r.Context(), username, middleware.ViewerID(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Update edits the authenticated user's profile fields
// PATCH /me
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.profileService.Update(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFieldTooLong):
			httputil.WriteBadRequest(w, "Profile field exceeds its length limit")
		case errors.Is(err, model.ErrProfileNotFound):
			httputil.WriteNotFound(w, "Profile not found")
		default:
			httputil.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Search finds profiles by username or display name
// GET /users/search?q=...&limit=...
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		httputil.WriteBadRequest(w, "Search query is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	users, err := h.profileService.Search(r.Context(), query, limit)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to search users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

// UploadAvatar replaces the authenticated user's avatar
// PUT /me/avatar
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, model.MaxAvatarSizeBytes, h.mediaService.UploadAvatar, h.profileService.SetAvatar)
}

// UploadCover replaces the authenticated user's cover image
// PUT /me/cover
func (h *UserHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, model.MaxCoverSizeBytes, h.mediaService.UploadCover, h.profileService.SetCover)
}

func (h *UserHandler) uploadImage(
	w http.ResponseWriter,
	r *http.Request,
	maxSize int64,
	upload func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error),
	store func(ctx context.Context, userID int64, url, key string) (*string, error),
) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	maxFormSize := maxSize + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds the size limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteBadRequest(w, "An image file is required")
		return
	}
	defer file.Close()

	result, err := upload(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds the size limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidMediaType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	oldKey, err := store(r.Context(), userID, result.URL, result.Key)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to save image")
		return
	}

	// Best-effort cleanup of the replaced object.
	if oldKey != nil && *oldKey != "" {
		if err := h.mediaService.DeleteObject(r.Context(), *oldKey); err != nil {
			log.Printf("[UserHandler] Failed to delete old image key=%s: %v", *oldKey, err)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
