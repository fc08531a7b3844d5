package playlists

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
)

// Move directions accepted by MoveItem.
const (
	MoveUp   = "up"
	MoveDown = "down"
)

// Service exposes playlist and playlist item management. Item order is kept
// by order_num: inserts append at max+1, moves swap two adjacent values and
// removals never renumber the survivors.
type Service interface {
	Create(ctx context.Context, req CreatePlaylistRequest) (*PlaylistDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PlaylistDTO, error)
	List(ctx context.Context) ([]PlaylistDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdatePlaylistRequest) (*PlaylistDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListItems(ctx context.Context, playlistID uuid.UUID) ([]ItemDTO, error)
	AddItem(ctx context.Context, playlistID uuid.UUID, req AddItemRequest) (*ItemDTO, error)
	MoveItem(ctx context.Context, playlistID, itemID uuid.UUID, direction string) ([]ItemDTO, error)
	SetItemDuration(ctx context.Context, playlistID, itemID uuid.UUID, duration string) (*ItemDTO, error)
	RemoveItem(ctx context.Context, playlistID, itemID uuid.UUID) error
}

type playlistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	List(ctx context.Context) ([]models.Playlist, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountItems(ctx context.Context, playlistIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type itemRepository interface {
	ListByPlaylist(ctx context.Context, playlistID uuid.UUID) ([]models.PlaylistItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PlaylistItem, error)
	MaxOrderNum(ctx context.Context, playlistID uuid.UUID) (int, error)
	Create(ctx context.Context, item *models.PlaylistItem) error
	SetDuration(ctx context.Context, id uuid.UUID, duration *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	SwapOrder(ctx context.Context, a, b models.PlaylistItem) error
}

type mediaFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
}

type linkFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ExternalLink, error)
}

// ServiceParams groups dependencies for the playlist service.
type ServiceParams struct {
	PlaylistRepo playlistRepository
	ItemRepo     itemRepository
	MediaRepo    mediaFinder
	LinkRepo     linkFinder
}

type service struct {
	playlists playlistRepository
	items     itemRepository
	media     mediaFinder
	links     linkFinder
}

// NewService builds a playlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.PlaylistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "playlist repo is required")
	}
	if params.ItemRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item repo is required")
	}
	if params.MediaRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "media repo is required")
	}
	if params.LinkRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "link repo is required")
	}
	return &service{
		playlists: params.PlaylistRepo,
		items:     params.ItemRepo,
		media:     params.MediaRepo,
		links:     params.LinkRepo,
	}, nil
}

// Create validates and persists a new playlist.
func (s *service) Create(ctx context.Context, req CreatePlaylistRequest) (*PlaylistDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "playlist name is required")
	}

	playlist := &models.Playlist{
		Name:        name,
		Description: req.Description,
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create playlist")
	}
	dto := playlistFromModel(playlist, 0)
	return &dto, nil
}

// Get loads a playlist with its item count.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*PlaylistDTO, error) {
	playlist, err := s.loadPlaylist(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.playlists.CountItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count playlist items")
	}
	dto := playlistFromModel(playlist, counts[id])
	return &dto, nil
}

// List returns all playlists with item counts, newest first.
func (s *service) List(ctx context.Context) ([]PlaylistDTO, error) {
	rows, err := s.playlists.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list playlists")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	counts, err := s.playlists.CountItems(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count playlist items")
	}

	dtos := make([]PlaylistDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, playlistFromModel(&rows[i], counts[rows[i].ID]))
	}
	return dtos, nil
}

// Update patches playlist fields.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdatePlaylistRequest) (*PlaylistDTO, error) {
	if _, err := s.loadPlaylist(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "playlist name cannot be blank")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}

	if len(updates) > 0 {
		if err := s.playlists.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update playlist")
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a playlist. Items and device activations cascade.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadPlaylist(ctx, id); err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete playlist")
	}
	return nil
}

// ListItems returns a playlist's items in display order with joined content
// details and resolved durations.
func (s *service) ListItems(ctx context.Context, playlistID uuid.UUID) ([]ItemDTO, error) {
	if _, err := s.loadPlaylist(ctx, playlistID); err != nil {
		return nil, err
	}
	rows, err := s.items.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list playlist items")
	}

	dtos := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, s.buildItemDTO(ctx, &rows[i]))
	}
	return dtos, nil
}

// AddItem appends content to the end of a playlist. The new item always
// takes max(order_num)+1 so existing order values never shift.
func (s *service) AddItem(ctx context.Context, playlistID uuid.UUID, req AddItemRequest) (*ItemDTO, error) {
	if _, err := s.loadPlaylist(ctx, playlistID); err != nil {
		return nil, err
	}
	kind, err := enums.ParseItemKind(req.ItemType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item_type must be image, video or link")
	}
	if req.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item_id is required")
	}
	if err := s.verifyContent(ctx, kind, req.ItemID); err != nil {
		return nil, err
	}

	maxOrder, err := s.items.MaxOrderNum(ctx, playlistID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read max order")
	}

	item := &models.PlaylistItem{
		PlaylistID: playlistID,
		ItemType:   kind,
		ItemID:     req.ItemID,
		OrderNum:   maxOrder + 1,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create playlist item")
	}
	dto := s.buildItemDTO(ctx, item)
	return &dto, nil
}

// MoveItem swaps the item's order_num with its neighbor in the requested
// direction and returns the refreshed ordered list. Moving the first item up
// or the last item down is a no-op. An item missing from the current
// snapshot means the caller's view is stale.
func (s *service) MoveItem(ctx context.Context, playlistID, itemID uuid.UUID, direction string) ([]ItemDTO, error) {
	if direction != MoveUp && direction != MoveDown {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be up or down")
	}
	if _, err := s.loadPlaylist(ctx, playlistID); err != nil {
		return nil, err
	}

	rows, err := s.items.ListByPlaylist(ctx, playlistID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list playlist items")
	}

	index := -1
	for i := range rows {
		if rows[i].ID == itemID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, pkgerrors.New(pkgerrors.CodeStale, "item no longer exists in this playlist")
	}

	neighbor := index - 1
	if direction == MoveDown {
		neighbor = index + 1
	}
	if neighbor < 0 || neighbor >= len(rows) {
		return s.ListItems(ctx, playlistID)
	}

	if err := s.items.SwapOrder(ctx, rows[index], rows[neighbor]); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStale, "item no longer exists in this playlist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "swap item order")
	}
	return s.ListItems(ctx, playlistID)
}

// SetItemDuration sets an item's display duration override, or clears it
// when the text is empty.
func (s *service) SetItemDuration(ctx context.Context, playlistID, itemID uuid.UUID, duration string) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, playlistID, itemID)
	if err != nil {
		return nil, err
	}

	var stored *string
	trimmed := strings.TrimSpace(duration)
	if trimmed != "" {
		if _, err := ParseDurationText(trimmed); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		stored = &trimmed
	}

	if err := s.items.SetDuration(ctx, itemID, stored); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStale, "item no longer exists in this playlist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set item duration")
	}

	item.Duration = stored
	dto := s.buildItemDTO(ctx, item)
	return &dto, nil
}

// RemoveItem deletes an item. Remaining items keep their order_num values so
// the induced order is unchanged apart from the gap.
func (s *service) RemoveItem(ctx context.Context, playlistID, itemID uuid.UUID) error {
	if _, err := s.loadItem(ctx, playlistID, itemID); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "playlist item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete playlist item")
	}
	return nil
}

func (s *service) loadPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "playlist id is required")
	}
	playlist, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "playlist not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load playlist")
	}
	return playlist, nil
}

func (s *service) loadItem(ctx context.Context, playlistID, itemID uuid.UUID) (*models.PlaylistItem, error) {
	if _, err := s.loadPlaylist(ctx, playlistID); err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "playlist item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load playlist item")
	}
	if item.PlaylistID != playlistID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "playlist item not found")
	}
	return item, nil
}

// verifyContent checks the referenced content exists and matches the kind.
func (s *service) verifyContent(ctx context.Context, kind enums.ItemKind, itemID uuid.UUID) error {
	if kind == enums.ItemKindLink {
		_, err := s.links.FindByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "link not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load link")
		}
		return nil
	}

	file, err := s.media.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "media file not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load media file")
	}
	if file.Type.ItemKind() != kind {
		return pkgerrors.New(pkgerrors.CodeValidation, "media file type does not match item_type")
	}
	return nil
}

// buildItemDTO joins content details and resolves the effective duration.
// A broken join leaves Content nil; the item still appears so the operator
// can remove it, and the preview marks it unavailable.
func (s *service) buildItemDTO(ctx context.Context, item *models.PlaylistItem) ItemDTO {
	dto := ItemDTO{
		ID:         item.ID,
		PlaylistID: item.PlaylistID,
		ItemType:   item.ItemType.String(),
		ItemID:     item.ItemID,
		OrderNum:   item.OrderNum,
		Duration:   item.Duration,
		CreatedAt:  item.CreatedAt,
	}

	displayTimeSeconds := 0
	if item.ItemType == enums.ItemKindLink {
		if link, err := s.links.FindByID(ctx, item.ItemID); err == nil {
			dto.Content = &ItemContentDTO{Name: link.Title, URL: link.URL}
			displayTimeSeconds = link.DisplayTime
		}
	} else {
		if file, err := s.media.FindByID(ctx, item.ItemID); err == nil {
			dto.Content = &ItemContentDTO{Name: file.Name, URL: file.URL}
		}
	}

	dto.DurationMS = resolveDurationMS(item.ItemType, item.Duration, displayTimeSeconds)
	return dto
}
