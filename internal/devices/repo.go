package devices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/db"
	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
)

// Repository encapsulates device persistence.
type Repository struct {
	db     *gorm.DB
	client *db.Client
}

// NewRepository constructs a device repository bound to the provided client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{db: client.DB(), client: client}
}

// Create inserts a device row.
func (r *Repository) Create(ctx context.Context, device *models.Device) error {
	return r.db.WithContext(ctx).Create(device).Error
}

// FindByID loads a device by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// FindByCode loads a device by its pairing code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).First(&device, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// List returns all devices, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&devices).Error
	return devices, err
}

// Update applies the provided column map to a device.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes a device; device_playlists rows cascade in the schema.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Device{}, "id = ?", id).Error
}

// RecordHeartbeat marks the device online and refreshes last_seen.
func (r *Repository) RecordHeartbeat(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    enums.DeviceStatusOnline,
			"last_seen": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkStale flips devices offline when their last heartbeat predates the cutoff.
func (r *Repository) MarkStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("status = ? AND (last_seen IS NULL OR last_seen < ?)", enums.DeviceStatusOnline, cutoff).
		Update("status", enums.DeviceStatusOffline)
	return result.RowsAffected, result.Error
}

// AssignPlaylist activates one playlist for the device, deactivating any other
// assignment in the same transaction.
func (r *Repository) AssignPlaylist(ctx context.Context, deviceID, playlistID uuid.UUID) error {
	return r.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&models.DevicePlaylist{}).
			Where("device_id = ? AND playlist_id <> ?", deviceID, playlistID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Exec(`
INSERT INTO device_playlists (device_id, playlist_id, is_active)
VALUES (?, ?, TRUE)
ON CONFLICT ON CONSTRAINT device_playlists_device_playlist_key
DO UPDATE SET is_active = TRUE, updated_at = now()`, deviceID, playlistID).Error
	})
}

type assignedPlaylistRecord struct {
	PlaylistID uuid.UUID `gorm:"column:playlist_id"`
	Name       string    `gorm:"column:name"`
	AssignedAt time.Time `gorm:"column:assigned_at"`
}

// ActivePlaylist returns the playlist the device is currently showing, or nil.
func (r *Repository) ActivePlaylist(ctx context.Context, deviceID uuid.UUID) (*AssignedPlaylistDTO, error) {
	var record assignedPlaylistRecord
	err := r.db.WithContext(ctx).
		Table("device_playlists dp").
		Select("dp.playlist_id, p.name, dp.updated_at AS assigned_at").
		Joins("JOIN playlists p ON p.id = dp.playlist_id").
		Where("dp.device_id = ? AND dp.is_active", deviceID).
		Order("dp.updated_at DESC").
		Limit(1).
		Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.PlaylistID == uuid.Nil {
		return nil, nil
	}
	return &AssignedPlaylistDTO{
		ID:         record.PlaylistID,
		Name:       record.Name,
		AssignedAt: record.AssignedAt,
	}, nil
}

// Count returns the total device count.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Device{}).Count(&count).Error
	return count, err
}

// CountByStatus returns how many devices currently report the given status.
func (r *Repository) CountByStatus(ctx context.Context, status enums.DeviceStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Device{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
