package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"desiiseb/internal/config"
	"desiiseb/internal/model"
)

// presignExpiry is how long a presigned post media upload URL stays valid.
const presignExpiry = 15 * time.Minute

// MediaService handles uploads to Cloudflare R2: server-side avatar and
// cover processing, and presigned direct uploads for post media.
type MediaService struct {
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	publicURL     string
	maxMediaSize  int64
}

// NewMediaService constructs an S3-compatible client for Cloudflare R2.
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &MediaService{
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
		bucket:        cfg.R2BucketName,
		publicURL:     strings.TrimSuffix(cfg.R2PublicURL, "/"),
		maxMediaSize:  cfg.MediaMaxSizeBytes,
	}, nil
}

// UploadAvatar enforces size/type, normalizes to 200x200 JPEG and uploads.
func (s *MediaService) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	return s.uploadProcessedImage(ctx, file, header,
		model.MaxAvatarSizeBytes, model.AvatarWidth, model.AvatarHeight, model.AvatarFolder)
}

// UploadCover enforces size/type, normalizes to 1200x400 JPEG and uploads.
func (s *MediaService) UploadCover(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	return s.uploadProcessedImage(ctx, file, header,
		model.MaxCoverSizeBytes, model.CoverWidth, model.CoverHeight, model.CoverFolder)
}

func (s *MediaService) uploadProcessedImage(ctx context.Context, file multipart.File, header *multipart.FileHeader, maxSize int64, width, height int, folder string) (*model.UploadResult, error) {
	data, _, err := readAndValidateImage(file, header, maxSize)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := resizeToJPEG(data, width, height, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), model.ImageExt)
	if err := s.putObject(ctx, key, jpegBytes, model.ContentTypeJPEG, model.ImageCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &model.UploadResult{URL: url, Key: key}, nil
}

// PresignPostUpload validates the declared type/size and returns a presigned
// PUT URL so post media bytes never pass through this server.
func (s *MediaService) PresignPostUpload(ctx context.Context, req model.PresignPostUploadRequest) (*model.PresignPostUploadResponse, error) {
	if !model.IsAllowedPostMediaType(req.ContentType) {
		return nil, model.ErrInvalidUploadType
	}
	if req.FileSize <= 0 || req.FileSize > s.maxMediaSize {
		return nil, model.ErrFileTooLarge
	}

	key := fmt.Sprintf("%s/%s%s", model.PostMediaFolder, uuid.NewString(), extForContentType(req.ContentType))

	presigned, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(req.ContentType),
		ContentLength: aws.Int64(req.FileSize),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign put object: %w", err)
	}

	return &model.PresignPostUploadResponse{
		UploadURL:  presigned.URL,
		PublicURL:  fmt.Sprintf("%s/%s", s.publicURL, key),
		Key:        key,
		ExpiresInS: int(presignExpiry.Seconds()),
	}, nil
}

// PresignPostUploadBatch presigns up to MaxPostMediaCount uploads at once.
func (s *MediaService) PresignPostUploadBatch(ctx context.Context, req model.PresignPostUploadBatchRequest) (*model.PresignPostUploadBatchResponse, error) {
	if len(req.Items) == 0 || len(req.Items) > model.MaxPostMediaCount {
		return nil, model.ErrTooManyMedia
	}

	resp := &model.PresignPostUploadBatchResponse{
		Items: make([]model.PresignPostUploadResponse, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		presigned, err := s.PresignPostUpload(ctx, item)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, *presigned)
	}
	return resp, nil
}

// DeleteObject removes an object by key. Callers must not pass shared keys.
func (s *MediaService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete from r2: %w", err)
	}
	return nil
}

// readAndValidateImage loads the upload into memory with size/type checks.
func readAndValidateImage(file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if header.Size > maxSize {
		return nil, "", model.ErrFileTooLarge
	}

	limitedReader := io.LimitReader(file, maxSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", model.ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		n := len(data)
		if n > 512 {
			n = 512
		}
		contentType = http.DetectContentType(data[:n])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, "", model.ErrInvalidImageType
	}

	return data, contentType, nil
}

// resizeToJPEG center-crops to the target size and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("upload to r2: %w", err)
	}
	return nil
}

func extForContentType(contentType string) string {
	switch contentType {
	case model.ContentTypeJPEG:
		return ".jpg"
	case model.ContentTypePNG:
		return ".png"
	case model.ContentTypeGIF:
		return ".gif"
	case model.ContentTypeWebP:
		return ".webp"
	case model.ContentTypeMP4:
		return ".mp4"
	case model.ContentTypeWebM:
		return ".webm"
	case model.ContentTypeMOV:
		return ".mov"
	}
	return ""
}
