package models

import (
	"time"

	"github.com/google/uuid"
)

// ExternalLink is a curated web page shown inside a playlist rotation.
// DisplayTime is the configured on-screen duration in seconds.
type ExternalLink struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	URL         string    `gorm:"column:url;not null"`
	Category    *string   `gorm:"column:category"`
	DisplayTime int       `gorm:"column:display_time;not null;default:15"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
