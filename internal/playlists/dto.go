package playlists

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
)

// PlaylistDTO is the transport shape for a playlist.
type PlaylistDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ItemCount   int64     `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemContentDTO carries the joined content details for a playlist item.
type ItemContentDTO struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ItemDTO is the transport shape for a playlist item. Content is nil when
// the referenced media file or link no longer exists; the item still renders
// in order views so the operator can remove it.
type ItemDTO struct {
	ID         uuid.UUID       `json:"id"`
	PlaylistID uuid.UUID       `json:"playlist_id"`
	ItemType   string          `json:"item_type"`
	ItemID     uuid.UUID       `json:"item_id"`
	OrderNum   int             `json:"order_num"`
	Duration   *string         `json:"duration,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	Content    *ItemContentDTO `json:"content"`
	CreatedAt  time.Time       `json:"created_at"`
}

// CreatePlaylistRequest creates a playlist.
type CreatePlaylistRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// UpdatePlaylistRequest patches playlist fields. Nil fields are untouched.
type UpdatePlaylistRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// AddItemRequest attaches a media file or link to a playlist.
type AddItemRequest struct {
	ItemType string    `json:"item_type" validate:"required,oneof=image video link"`
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
}

// MoveItemRequest nudges an item one position up or down.
type MoveItemRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// SetDurationRequest sets or clears an item's display duration. An empty
// string clears the override so the kind default applies again.
type SetDurationRequest struct {
	Duration string `json:"duration"`
}

func playlistFromModel(p *models.Playlist, itemCount int64) PlaylistDTO {
	return PlaylistDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ItemCount:   itemCount,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
