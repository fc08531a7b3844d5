package links

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
)

// LinkDTO is the transport shape for an external web page entry.
type LinkDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Category    *string   `json:"category,omitempty"`
	DisplayTime int       `json:"display_time_seconds"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateLinkRequest holds input for adding a link.
type CreateLinkRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	URL         string  `json:"url" validate:"required,url,max=2000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	DisplayTime *int    `json:"display_time_seconds" validate:"omitempty,gt=0,lte=3600"`
}

// UpdateLinkRequest carries the mutable link fields; nil means unchanged.
type UpdateLinkRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	URL         *string `json:"url" validate:"omitempty,url,max=2000"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	DisplayTime *int    `json:"display_time_seconds" validate:"omitempty,gt=0,lte=3600"`
}

// PageDTO is a cursor-paginated list of links.
type PageDTO struct {
	Items      []LinkDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func fromModel(m *models.ExternalLink) LinkDTO {
	return LinkDTO{
		ID:          m.ID,
		Title:       m.Title,
		URL:         m.URL,
		Category:    m.Category,
		DisplayTime: m.DisplayTime,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
