package devices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/config"
	"github.com/vitrine-labs/signage-backend/pkg/db"
	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
	"github.com/vitrine-labs/signage-backend/pkg/logger"
	"github.com/vitrine-labs/signage-backend/pkg/pubsub"
	"github.com/vitrine-labs/signage-backend/pkg/security"
)

const activationCodeLength = 8

// Service exposes business rules for device management.
type Service interface {
	Register(ctx context.Context, req RegisterDeviceRequest) (*DeviceDTO, error)
	List(ctx context.Context) ([]DeviceDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*DeviceWithPlaylistDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateDeviceRequest) (*DeviceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Heartbeat(ctx context.Context, id uuid.UUID) (*HeartbeatResponse, error)
	AssignPlaylist(ctx context.Context, deviceID uuid.UUID, req AssignPlaylistRequest) error
}

type deviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Device, error)
	List(ctx context.Context) ([]models.Device, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	RecordHeartbeat(ctx context.Context, id uuid.UUID, at time.Time) error
	AssignPlaylist(ctx context.Context, deviceID, playlistID uuid.UUID) error
	ActivePlaylist(ctx context.Context, deviceID uuid.UUID) (*AssignedPlaylistDTO, error)
}

type playlistFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
}

// ServiceParams groups dependencies for the device service.
type ServiceParams struct {
	DeviceRepo   deviceRepository
	PlaylistRepo playlistFinder
	Events       pubsub.DeviceEventPublisher
	Logger       *logger.Logger
	Config       config.PubSubConfig
}

type service struct {
	devices   deviceRepository
	playlists playlistFinder
	events    pubsub.DeviceEventPublisher
	logg      *logger.Logger
}

// NewService builds a device service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DeviceRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device repo is required")
	}
	if params.PlaylistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "playlist repo is required")
	}
	events := params.Events
	if events == nil || !params.Config.Enabled {
		events = pubsub.NopPublisher{}
	}
	return &service{
		devices:   params.DeviceRepo,
		playlists: params.PlaylistRepo,
		events:    events,
		logg:      params.Logger,
	}, nil
}

// Register creates a device, generating a pairing code when none is supplied.
func (s *service) Register(ctx context.Context, req RegisterDeviceRequest) (*DeviceDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device name is required")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		generated, err := security.GenerateActivationCode(activationCodeLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate pairing code")
		}
		code = generated
	}

	device := &models.Device{
		Name:        name,
		Code:        code,
		Description: req.Description,
		Status:      enums.DeviceStatusOffline,
	}
	if err := s.devices.Create(ctx, device); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "device code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create device")
	}

	s.publish(ctx, pubsub.DeviceEvent{
		Type:     pubsub.DeviceEventRegistered,
		DeviceID: device.ID.String(),
		Data:     map[string]any{"name": device.Name, "code": device.Code},
	})

	dto := fromModel(device)
	return &dto, nil
}

// List returns all registered devices.
func (s *service) List(ctx context.Context) ([]DeviceDTO, error) {
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list devices")
	}
	out := make([]DeviceDTO, 0, len(devices))
	for i := range devices {
		out = append(out, fromModel(&devices[i]))
	}
	return out, nil
}

// Get returns the device together with its active playlist, if assigned.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*DeviceWithPlaylistDTO, error) {
	device, err := s.loadDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	active, err := s.devices.ActivePlaylist(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active playlist")
	}
	return &DeviceWithPlaylistDTO{
		DeviceDTO:      fromModel(device),
		ActivePlaylist: active,
	}, nil
}

// Update applies the mutable fields and returns the fresh device state.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateDeviceRequest) (*DeviceDTO, error) {
	if _, err := s.loadDevice(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "device name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) > 0 {
		if err := s.devices.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update device")
		}
	}

	device, err := s.loadDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := fromModel(device)
	return &dto, nil
}

// Delete removes the device and its playlist assignments.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadDevice(ctx, id); err != nil {
		return err
	}
	if err := s.devices.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete device")
	}
	s.publish(ctx, pubsub.DeviceEvent{
		Type:     pubsub.DeviceEventDeleted,
		DeviceID: id.String(),
	})
	return nil
}

// Heartbeat marks the device online and returns the refreshed state.
func (s *service) Heartbeat(ctx context.Context, id uuid.UUID) (*HeartbeatResponse, error) {
	device, err := s.loadDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.devices.RecordHeartbeat(ctx, id, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record heartbeat")
	}

	if device.Status != enums.DeviceStatusOnline {
		s.publish(ctx, pubsub.DeviceEvent{
			Type:     pubsub.DeviceEventOnline,
			DeviceID: id.String(),
		})
	}

	return &HeartbeatResponse{
		Status:   enums.DeviceStatusOnline,
		LastSeen: now,
	}, nil
}

// AssignPlaylist makes the given playlist the device's active one.
func (s *service) AssignPlaylist(ctx context.Context, deviceID uuid.UUID, req AssignPlaylistRequest) error {
	if req.PlaylistID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "playlist id is required")
	}
	if _, err := s.loadDevice(ctx, deviceID); err != nil {
		return err
	}
	if _, err := s.playlists.FindByID(ctx, req.PlaylistID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "playlist not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load playlist")
	}

	if err := s.devices.AssignPlaylist(ctx, deviceID, req.PlaylistID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign playlist")
	}

	s.publish(ctx, pubsub.DeviceEvent{
		Type:     pubsub.DeviceEventAssigned,
		DeviceID: deviceID.String(),
		Data:     map[string]any{"playlist_id": req.PlaylistID.String()},
	})
	return nil
}

func (s *service) loadDevice(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id is required")
	}
	device, err := s.devices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "device not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load device")
	}
	return device, nil
}

// Event publishing is best effort; delivery problems never fail the request.
func (s *service) publish(ctx context.Context, event pubsub.DeviceEvent) {
	if err := s.events.PublishDeviceEvent(ctx, event); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"event_type": event.Type,
			"device_id":  event.DeviceID,
		}), "publishing device event failed")
	}
}
