package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/enums"
)

// Device is a registered display endpoint (TV box, kiosk screen).
type Device struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	Code        string             `gorm:"column:code;not null;unique"`
	Description *string            `gorm:"column:description"`
	Status      enums.DeviceStatus `gorm:"column:status;not null;default:offline"`
	LastSeen    *time.Time         `gorm:"column:last_seen"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
