package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
)

type mediaRepository interface {
	Create(ctx context.Context, file *models.MediaFile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
	List(ctx context.Context, mediaType, cursor string, limit int) (PageDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
	ObjectURL(bucket, object string) string
}

// Service exposes media upload and library semantics.
type Service interface {
	PresignUpload(ctx context.Context, req PresignRequest) (*PresignResponse, error)
	List(ctx context.Context, mediaType, cursor string, limit int) (PageDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo           mediaRepository
	gcs            gcsClient
	bucket         string
	uploadTTL      time.Duration
	maxUploadBytes int64
}

// ServiceParams bundles the dependencies required to build a media service.
type ServiceParams struct {
	Repo        mediaRepository
	GCS         gcsClient
	Bucket      string
	UploadTTL   time.Duration
	MaxUploadMB int
}

// NewService constructs a media service backed by the provided repository and GCS signer.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if params.GCS == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if params.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if params.UploadTTL <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	if params.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		repo:           params.Repo,
		gcs:            params.GCS,
		bucket:         params.Bucket,
		uploadTTL:      params.UploadTTL,
		maxUploadBytes: int64(params.MaxUploadMB) * 1024 * 1024,
	}, nil
}

var allowedMimeTypes = map[string]enums.MediaType{
	"image/png":  enums.MediaTypeImage,
	"image/jpeg": enums.MediaTypeImage,
	"image/webp": enums.MediaTypeImage,
	"image/gif":  enums.MediaTypeImage,
	"video/mp4":  enums.MediaTypeVideo,
	"video/webm": enums.MediaTypeVideo,
}

// PresignUpload validates the upload, records the asset, and signs a PUT URL.
func (s *service) PresignUpload(ctx context.Context, req PresignRequest) (*PresignResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if req.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if req.SizeBytes > s.maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be <= %d bytes", s.maxUploadBytes))
	}

	mimeType := strings.ToLower(strings.TrimSpace(req.MimeType))
	mediaType, ok := allowedMimeTypes[mimeType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed")
	}

	mediaID := uuid.New()
	gcsKey := buildGCSKey(mediaType, mediaID, name)
	publicURL := s.gcs.ObjectURL(s.bucket, gcsKey)

	file := &models.MediaFile{
		ID:         mediaID,
		Name:       name,
		Type:       mediaType,
		Format:     mimeType,
		SizeBytes:  req.SizeBytes,
		Dimensions: req.Dimensions,
		Duration:   req.Duration,
		GCSKey:     gcsKey,
		URL:        publicURL,
	}
	if err := s.repo.Create(ctx, file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist media row")
	}

	expiresAt := time.Now().Add(s.uploadTTL)
	signedURL, err := s.gcs.SignedURL(s.bucket, gcsKey, mimeType, s.uploadTTL)
	if err != nil {
		_ = s.repo.Delete(ctx, mediaID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignResponse{
		MediaID:      mediaID,
		GCSKey:       gcsKey,
		SignedPUTURL: signedURL,
		ContentType:  mimeType,
		PublicURL:    publicURL,
		ExpiresAt:    expiresAt,
	}, nil
}

// List returns a page of media files.
func (s *service) List(ctx context.Context, mediaType, cursor string, limit int) (PageDTO, error) {
	if trimmed := strings.TrimSpace(mediaType); trimmed != "" {
		if _, err := enums.ParseMediaType(trimmed); err != nil {
			return PageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid media type filter")
		}
	}
	page, err := s.repo.List(ctx, mediaType, cursor, limit)
	if err != nil {
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list media")
	}
	return page, nil
}

// Delete removes the row first, then the object; a dangling GCS object is
// preferable to a row pointing at nothing.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "media id is required")
	}
	file, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media row")
	}
	if err := s.gcs.DeleteObject(ctx, s.bucket, file.GCSKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media object")
	}
	return nil
}

func buildGCSKey(mediaType enums.MediaType, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("media/%s/%s/%s", mediaType, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
