package models

import (
	"time"

	"github.com/google/uuid"
)

// DevicePlaylist links a playlist to a device; IsActive marks the one the
// device is currently showing.
type DevicePlaylist struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DeviceID   uuid.UUID `gorm:"column:device_id;type:uuid;not null;uniqueIndex:device_playlists_device_playlist_key"`
	PlaylistID uuid.UUID `gorm:"column:playlist_id;type:uuid;not null;uniqueIndex:device_playlists_device_playlist_key"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
