package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
)

// MediaFileDTO is the transport shape for an uploaded asset.
type MediaFileDTO struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Type       enums.MediaType `json:"type"`
	Format     string          `json:"format"`
	SizeBytes  int64           `json:"size_bytes"`
	Dimensions *string         `json:"dimensions,omitempty"`
	Duration   *string         `json:"duration,omitempty"`
	URL        string          `json:"url"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// PresignRequest models the payload required to request an upload URL.
type PresignRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=255"`
	MimeType   string  `json:"mime_type" validate:"required"`
	SizeBytes  int64   `json:"size_bytes" validate:"required,gt=0"`
	Dimensions *string `json:"dimensions" validate:"omitempty,max=20"`
	Duration   *string `json:"duration" validate:"omitempty,max=20"`
}

// PresignResponse contains the data returned to the client for a direct upload.
type PresignResponse struct {
	MediaID      uuid.UUID `json:"media_id"`
	GCSKey       string    `json:"gcs_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	PublicURL    string    `json:"public_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// PageDTO is a cursor-paginated list of media files.
type PageDTO struct {
	Items      []MediaFileDTO `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func fromModel(m *models.MediaFile) MediaFileDTO {
	return MediaFileDTO{
		ID:         m.ID,
		Name:       m.Name,
		Type:       m.Type,
		Format:     m.Format,
		SizeBytes:  m.SizeBytes,
		Dimensions: m.Dimensions,
		Duration:   m.Duration,
		URL:        m.URL,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
