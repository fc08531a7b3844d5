package playlists

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/db"
	"github.com/vitrine-labs/signage-backend/pkg/db/models"
)

// ItemRepository encapsulates playlist item persistence. Order numbers are
// never compacted here: inserts take max+1, deletes leave gaps, and a move
// swaps exactly two rows.
type ItemRepository struct {
	db     *gorm.DB
	client *db.Client
}

// NewItemRepository constructs an item repository bound to the provided client.
func NewItemRepository(client *db.Client) *ItemRepository {
	return &ItemRepository{db: client.DB(), client: client}
}

// ListByPlaylist returns a playlist's items in display order. created_at
// breaks ties so a duplicate order_num left by an interrupted swap still
// yields a stable sequence.
func (r *ItemRepository) ListByPlaylist(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistItem, error) {
	var items []models.PlaylistItem
	err := r.db.WithContext(ctx).
		Where("playlist_id = ?", playlistID).
		Order("order_num ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

// FindByID loads a single item.
func (r *ItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.PlaylistItem, error) {
	var item models.PlaylistItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// MaxOrderNum returns the highest order_num in a playlist, zero when empty.
func (r *ItemRepository) MaxOrderNum(ctx context.Context, playlistID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.PlaylistItem{}).
		Where("playlist_id = ?", playlistID).
		Select("COALESCE(MAX(order_num), 0)").
		Scan(&max).Error
	return max, err
}

// Create inserts an item row.
func (r *ItemRepository) Create(ctx context.Context, item *models.PlaylistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// SetDuration persists an item's duration text; nil clears the override.
// Returns gorm.ErrRecordNotFound when the item has been deleted.
func (r *ItemRepository) SetDuration(ctx context.Context, id uuid.UUID, duration *string) error {
	result := r.db.WithContext(ctx).
		Model(&models.PlaylistItem{}).
		Where("id = ?", id).
		Update("duration", duration)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes an item. Neighboring order_num values are left alone.
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PlaylistItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SwapOrder exchanges the order_num values of two items in one transaction.
// If either row vanished since the caller's read the whole swap rolls back
// and gorm.ErrRecordNotFound is returned.
func (r *ItemRepository) SwapOrder(ctx context.Context, a, b models.PlaylistItem) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		first := tx.Model(&models.PlaylistItem{}).
			Where("id = ?", a.ID).
			Update("order_num", b.OrderNum)
		if first.Error != nil {
			return first.Error
		}
		if first.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		second := tx.Model(&models.PlaylistItem{}).
			Where("id = ?", b.ID).
			Update("order_num", a.OrderNum)
		if second.Error != nil {
			return second.Error
		}
		if second.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
