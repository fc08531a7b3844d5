package playlists

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/db"
	"github.com/vitrine-labs/signage-backend/pkg/db/models"
)

// Repository encapsulates playlist persistence.
type Repository struct {
	db     *gorm.DB
	client *db.Client
}

// NewRepository constructs a playlist repository bound to the provided client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{db: client.DB(), client: client}
}

// Create inserts a playlist row.
func (r *Repository) Create(ctx context.Context, playlist *models.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

// FindByID loads a playlist by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).First(&playlist, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &playlist, nil
}

// List returns all playlists, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&playlists).Error
	return playlists, err
}

// Update applies the provided column map to a playlist.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Playlist{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes a playlist; its items and device activations cascade in
// the schema.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Playlist{}, "id = ?", id).Error
}

// Count returns the total number of playlists.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Playlist{}).Count(&count).Error
	return count, err
}

// CountItems returns per-playlist item counts for the given playlists.
func (r *Repository) CountItems(ctx context.Context, playlistIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(playlistIDs))
	if len(playlistIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PlaylistID uuid.UUID
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.PlaylistItem{}).
		Select("playlist_id", "COUNT(*) AS total").
		Where("playlist_id IN ?", playlistIDs).
		Group("playlist_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PlaylistID] = row.Total
	}
	return counts, nil
}
