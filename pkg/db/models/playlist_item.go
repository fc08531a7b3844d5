package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/enums"
)

// PlaylistItem is a single content reference inside a playlist. OrderNum only
// carries relative position; values are not contiguous and gaps left by
// deletes are never compacted. Reads order by (order_num, created_at) so a
// duplicate order_num produced by an interrupted swap still sorts stably.
type PlaylistItem struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PlaylistID uuid.UUID      `gorm:"column:playlist_id;type:uuid;not null;index:playlist_items_playlist_id_idx"`
	ItemType   enums.ItemKind `gorm:"column:item_type;not null"`
	ItemID     uuid.UUID      `gorm:"column:item_id;type:uuid;not null"`
	OrderNum   int            `gorm:"column:order_num;not null"`
	Duration   *string        `gorm:"column:duration"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
