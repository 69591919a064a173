package model

import "errors"

const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"

	MaxCoverSizeBytes = 5 * 1024 * 1024
	CoverWidth        = 1200
	CoverHeight       = 400
	CoverFolder       = "covers"

	ImageExt          = ".jpg"
	ImageCacheControl = "public, max-age=31536000" // 1 year

	PostMediaFolder = "posts"
)

// Supported content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
	ContentTypeMP4  = "video/mp4"
	ContentTypeWebM = "video/webm"
	ContentTypeMOV  = "video/quicktime"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

var allowedPostMediaTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
	ContentTypeMP4:  {},
	ContentTypeWebM: {},
	ContentTypeMOV:  {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidMediaType = "INVALID_MEDIA_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge      = errors.New("file too large")
	ErrInvalidImageType  = errors.New("invalid image type")
	ErrInvalidUploadType = errors.New("invalid upload content type")
)

// UploadResult represents the uploaded object location.
// URL is the public-facing URL; Key is the object key inside the bucket.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignPostUploadRequest requests a presigned URL for uploading post media
// directly to storage. The client uploads bytes to UploadURL, then passes
// PublicURL in POST /posts media_urls.
type PresignPostUploadRequest struct {
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

// PresignPostUploadResponse returns upload details for direct uploads.
type PresignPostUploadResponse struct {
	UploadURL  string `json:"upload_url"`
	PublicURL  string `json:"public_url"`
	Key        string `json:"key"`
	ExpiresInS int    `json:"expires_in"`
}

// PresignPostUploadBatchRequest requests multiple presigned URLs at once,
// one per media item of a post being composed.
type PresignPostUploadBatchRequest struct {
	Items []PresignPostUploadRequest `json:"items"`
}

// PresignPostUploadBatchResponse returns presigned URLs for each item.
type PresignPostUploadBatchResponse struct {
	Items []PresignPostUploadResponse `json:"items"`
}

// IsAllowedImageType reports if the content type is an accepted image upload
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// IsAllowedPostMediaType reports if the content type is accepted post media
func IsAllowedPostMediaType(contentType string) bool {
	_, ok := allowedPostMediaTypes[contentType]
	return ok
}
