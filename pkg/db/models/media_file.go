package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/enums"
)

// MediaFile captures metadata for an uploaded image or video asset.
type MediaFile struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	Type       enums.MediaType `gorm:"column:type;not null"`
	Format     string          `gorm:"column:format;not null"`
	SizeBytes  int64           `gorm:"column:size_bytes;not null"`
	Dimensions *string         `gorm:"column:dimensions"`
	Duration   *string         `gorm:"column:duration"`
	GCSKey     string          `gorm:"column:gcs_key;not null;unique"`
	URL        string          `gorm:"column:url;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
