package links

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
)

const defaultDisplayTimeSeconds = 15

// Service exposes business rules for external link management.
type Service interface {
	Create(ctx context.Context, req CreateLinkRequest) (*LinkDTO, error)
	List(ctx context.Context, category, cursor string, limit int) (PageDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateLinkRequest) (*LinkDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type linkRepository interface {
	Create(ctx context.Context, link *models.ExternalLink) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ExternalLink, error)
	List(ctx context.Context, category, cursor string, limit int) (PageDTO, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the link service.
type ServiceParams struct {
	LinkRepo linkRepository
}

type service struct {
	links linkRepository
}

// NewService builds a link service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.LinkRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link repo is required")
	}
	return &service{links: params.LinkRepo}, nil
}

// Create validates and persists a new link entry.
func (s *service) Create(ctx context.Context, req CreateLinkRequest) (*LinkDTO, error) {
	title := strings.TrimSpace(req.Title)
	rawURL := strings.TrimSpace(req.URL)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link title is required")
	}
	if rawURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link url is required")
	}

	displayTime := defaultDisplayTimeSeconds
	if req.DisplayTime != nil {
		if *req.DisplayTime <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display time must be positive")
		}
		displayTime = *req.DisplayTime
	}

	link := &models.ExternalLink{
		Title:       title,
		URL:         rawURL,
		Category:    req.Category,
		DisplayTime: displayTime,
	}
	if err := s.links.Create(ctx, link); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create link")
	}
	dto := fromModel(link)
	return &dto, nil
}

// List returns a page of links.
func (s *service) List(ctx context.Context, category, cursor string, limit int) (PageDTO, error) {
	page, err := s.links.List(ctx, category, cursor, limit)
	if err != nil {
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list links")
	}
	return page, nil
}

// Update applies the mutable fields and returns the fresh link state.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateLinkRequest) (*LinkDTO, error) {
	if _, err := s.loadLink(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "link title cannot be empty")
		}
		updates["title"] = title
	}
	if req.URL != nil {
		rawURL := strings.TrimSpace(*req.URL)
		if rawURL == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "link url cannot be empty")
		}
		updates["url"] = rawURL
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.DisplayTime != nil {
		if *req.DisplayTime <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display time must be positive")
		}
		updates["display_time"] = *req.DisplayTime
	}

	if len(updates) > 0 {
		if err := s.links.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update link")
		}
	}

	link, err := s.loadLink(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := fromModel(link)
	return &dto, nil
}

// Delete removes the link. Playlist items referencing it keep their rows; the
// read path resolves missing content to a skippable placeholder.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadLink(ctx, id); err != nil {
		return err
	}
	if err := s.links.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete link")
	}
	return nil
}

func (s *service) loadLink(ctx context.Context, id uuid.UUID) (*models.ExternalLink, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link id is required")
	}
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load link")
	}
	return link, nil
}
