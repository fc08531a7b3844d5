package links

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/pagination"
)

// Repository encapsulates external link persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a link repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a link row.
func (r *Repository) Create(ctx context.Context, link *models.ExternalLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// FindByID loads one link.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ExternalLink, error) {
	var link models.ExternalLink
	if err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// List returns a cursor-paginated page of links, optionally filtered by category.
func (r *Repository) List(ctx context.Context, category string, cursor string, limit int) (PageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return PageDTO{}, err
	}

	query := r.db.WithContext(ctx).Model(&models.ExternalLink{})
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		query = query.Where("category = ?", trimmed)
	}
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.ExternalLink
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

	items := make([]LinkDTO, 0, len(rows))
	for i := range rows {
		items = append(items, fromModel(&rows[i]))
	}
	return PageDTO{Items: items, NextCursor: nextCursor}, nil
}

// Update applies the provided column map to a link.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ExternalLink{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes the link row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ExternalLink{}, "id = ?", id).Error
}

// Count returns the total number of links.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ExternalLink{}).Count(&count).Error
	return count, err
}
