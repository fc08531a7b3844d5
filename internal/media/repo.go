package media

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
	"github.com/vitrine-labs/signage-backend/pkg/pagination"
)

// Repository encapsulates media file persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a media file row.
func (r *Repository) Create(ctx context.Context, file *models.MediaFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// FindByID loads one media file.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	if err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// List returns a cursor-paginated page of media files, optionally filtered by type.
func (r *Repository) List(ctx context.Context, mediaType string, cursor string, limit int) (PageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return PageDTO{}, err
	}

	query := r.db.WithContext(ctx).Model(&models.MediaFile{})
	if trimmed := strings.TrimSpace(mediaType); trimmed != "" {
		query = query.Where("type = ?", trimmed)
	}
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.MediaFile
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return PageDTO{}, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]MediaFileDTO, 0, len(rows))
	for i := range rows {
		items = append(items, fromModel(&rows[i]))
	}
	return PageDTO{Items: items, NextCursor: nextCursor}, nil
}

// Delete removes the media file row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MediaFile{}, "id = ?", id).Error
}

// Count returns the total media file count.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MediaFile{}).Count(&count).Error
	return count, err
}

// CountByType returns how many files exist for a media type.
func (r *Repository) CountByType(ctx context.Context, mediaType enums.MediaType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MediaFile{}).
		Where("type = ?", mediaType).
		Count(&count).Error
	return count, err
}
