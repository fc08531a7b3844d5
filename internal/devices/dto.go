package devices

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
)

// DeviceDTO is the transport shape for a registered display.
type DeviceDTO struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Code        string             `json:"code"`
	Description *string            `json:"description,omitempty"`
	Status      enums.DeviceStatus `json:"status"`
	LastSeen    *time.Time         `json:"last_seen,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// DeviceWithPlaylistDTO extends the device payload with its active playlist, if any.
type DeviceWithPlaylistDTO struct {
	DeviceDTO
	ActivePlaylist *AssignedPlaylistDTO `json:"active_playlist,omitempty"`
}

// AssignedPlaylistDTO is the playlist summary joined onto a device view.
type AssignedPlaylistDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	AssignedAt time.Time `json:"assigned_at"`
}

// RegisterDeviceRequest holds input for registering a new display.
type RegisterDeviceRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Code        string  `json:"code" validate:"omitempty,min=4,max=32"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdateDeviceRequest carries the mutable device fields; nil means unchanged.
type UpdateDeviceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// AssignPlaylistRequest selects the playlist a device should show.
type AssignPlaylistRequest struct {
	PlaylistID uuid.UUID `json:"playlist_id" validate:"required"`
}

// HeartbeatResponse echoes the refreshed device state back to the player.
type HeartbeatResponse struct {
	Status   enums.DeviceStatus `json:"status"`
	LastSeen time.Time          `json:"last_seen"`
}

func fromModel(m *models.Device) DeviceDTO {
	return DeviceDTO{
		ID:          m.ID,
		Name:        m.Name,
		Code:        m.Code,
		Description: m.Description,
		Status:      m.Status,
		LastSeen:    m.LastSeen,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
