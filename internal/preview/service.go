package preview

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/internal/playlists"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
)

// Service exposes preview operations over the session manager.
type Service interface {
	Start(ctx context.Context, playlistID uuid.UUID) (*SessionDTO, error)
	Get(ctx context.Context, sessionID string) (*SessionDTO, error)
	Next(ctx context.Context, sessionID string) (*SessionDTO, error)
	Prev(ctx context.Context, sessionID string) (*SessionDTO, error)
	ToggleAutoplay(ctx context.Context, sessionID string) (*SessionDTO, error)
	MediaEnded(ctx context.Context, sessionID string) (*SessionDTO, error)
	Stop(ctx context.Context, sessionID string) error
}

type snapshotProvider interface {
	ListItems(ctx context.Context, playlistID uuid.UUID) ([]playlists.ItemDTO, error)
}

// ServiceParams groups dependencies for the preview service.
type ServiceParams struct {
	Playlists snapshotProvider
	Manager   *Manager
}

type service struct {
	playlists snapshotProvider
	manager   *Manager
}

// NewService builds a preview service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Playlists == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "playlist service is required")
	}
	if params.Manager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	return &service{playlists: params.Playlists, manager: params.Manager}, nil
}

// Start snapshots the playlist's current items and opens a session over
// them. Later playlist edits do not affect an open session; reopening the
// preview takes a fresh snapshot.
func (s *service) Start(ctx context.Context, playlistID uuid.UUID) (*SessionDTO, error) {
	items, err := s.playlists.ListItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	slides := make([]Slide, 0, len(items))
	for _, item := range items {
		slides = append(slides, slideFromItem(item))
	}

	session, err := s.manager.Start(playlistID, slides)
	if err != nil {
		return nil, err
	}
	dto := session.Snapshot()
	return &dto, nil
}

// Get returns the session's current state.
func (s *service) Get(ctx context.Context, sessionID string) (*SessionDTO, error) {
	session, err := s.manager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	dto := session.Snapshot()
	return &dto, nil
}

// Next advances the session one slide.
func (s *service) Next(ctx context.Context, sessionID string) (*SessionDTO, error) {
	session, err := s.manager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	dto := session.Next()
	return &dto, nil
}

// Prev moves the session back one slide.
func (s *service) Prev(ctx context.Context, sessionID string) (*SessionDTO, error) {
	session, err := s.manager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	dto := session.Prev()
	return &dto, nil
}

// ToggleAutoplay flips the session's autoplay flag.
func (s *service) ToggleAutoplay(ctx context.Context, sessionID string) (*SessionDTO, error) {
	session, err := s.manager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	dto := session.ToggleAutoplay()
	return &dto, nil
}

// MediaEnded feeds the player's ended event into the session.
func (s *service) MediaEnded(ctx context.Context, sessionID string) (*SessionDTO, error) {
	session, err := s.manager.Get(sessionID)
	if err != nil {
		return nil, err
	}
	dto := session.MediaEnded()
	return &dto, nil
}

// Stop closes the session.
func (s *service) Stop(ctx context.Context, sessionID string) error {
	s.manager.Stop(sessionID)
	return nil
}

func slideFromItem(item playlists.ItemDTO) Slide {
	slide := Slide{
		ItemID:     item.ID,
		Kind:       enums.ItemKind(item.ItemType),
		DurationMS: item.DurationMS,
	}
	if item.Content != nil {
		slide.Name = item.Content.Name
		slide.URL = item.Content.URL
	} else {
		slide.Unavailable = true
	}
	return slide
}
