package devices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitrine-labs/signage-backend/pkg/config"
	"github.com/vitrine-labs/signage-backend/pkg/db/models"
	"github.com/vitrine-labs/signage-backend/pkg/enums"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
	"github.com/vitrine-labs/signage-backend/pkg/pubsub"
)

type fakeDeviceRepo struct {
	devices map[uuid.UUID]*models.Device
	active  map[uuid.UUID]uuid.UUID

	heartbeats []uuid.UUID
	assigned   []uuid.UUID
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{
		devices: map[uuid.UUID]*models.Device{},
		active:  map[uuid.UUID]uuid.UUID{},
	}
}

func (f *fakeDeviceRepo) Create(ctx context.Context, device *models.Device) error {
	for _, existing := range f.devices {
		if existing.Code == device.Code {
			return &duplicateCodeError{}
		}
	}
	device.ID = uuid.New()
	device.CreatedAt = time.Now()
	device.UpdatedAt = device.CreatedAt
	f.devices[device.ID] = device
	return nil
}

type duplicateCodeError struct{}

func (*duplicateCodeError) Error() string { return "duplicate key value violates unique constraint" }

func (f *fakeDeviceRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	device, ok := f.devices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *device
	return &copied, nil
}

func (f *fakeDeviceRepo) List(ctx context.Context) ([]models.Device, error) {
	out := make([]models.Device, 0, len(f.devices))
	for _, d := range f.devices {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDeviceRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	device, ok := f.devices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		device.Name = name
	}
	if desc, ok := updates["description"].(string); ok {
		device.Description = &desc
	}
	return nil
}

func (f *fakeDeviceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.devices, id)
	delete(f.active, id)
	return nil
}

func (f *fakeDeviceRepo) RecordHeartbeat(ctx context.Context, id uuid.UUID, at time.Time) error {
	device, ok := f.devices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	device.Status = enums.DeviceStatusOnline
	device.LastSeen = &at
	f.heartbeats = append(f.heartbeats, id)
	return nil
}

func (f *fakeDeviceRepo) AssignPlaylist(ctx context.Context, deviceID, playlistID uuid.UUID) error {
	f.active[deviceID] = playlistID
	f.assigned = append(f.assigned, playlistID)
	return nil
}

func (f *fakeDeviceRepo) ActivePlaylist(ctx context.Context, deviceID uuid.UUID) (*AssignedPlaylistDTO, error) {
	playlistID, ok := f.active[deviceID]
	if !ok {
		return nil, nil
	}
	return &AssignedPlaylistDTO{ID: playlistID, Name: "assigned"}, nil
}

type fakePlaylistFinder struct {
	playlists map[uuid.UUID]*models.Playlist
}

func (f *fakePlaylistFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	playlist, ok := f.playlists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return playlist, nil
}

type recordingPublisher struct {
	events []pubsub.DeviceEvent
}

func (r *recordingPublisher) PublishDeviceEvent(ctx context.Context, event pubsub.DeviceEvent) error {
	r.events = append(r.events, event)
	return nil
}

func buildDeviceService(t *testing.T) (Service, *fakeDeviceRepo, *fakePlaylistFinder, *recordingPublisher) {
	t.Helper()
	repo := newFakeDeviceRepo()
	playlists := &fakePlaylistFinder{playlists: map[uuid.UUID]*models.Playlist{}}
	events := &recordingPublisher{}
	svc, err := NewService(ServiceParams{
		DeviceRepo:   repo,
		PlaylistRepo: playlists,
		Events:       events,
		Config:       config.PubSubConfig{Enabled: true},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, playlists, events
}

func TestRegisterGeneratesCode(t *testing.T) {
	svc, _, _, events := buildDeviceService(t)

	dto, err := svc.Register(context.Background(), RegisterDeviceRequest{Name: "Lobby TV"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(dto.Code) != activationCodeLength {
		t.Fatalf("expected generated %d-char code, got %q", activationCodeLength, dto.Code)
	}
	if dto.Status != enums.DeviceStatusOffline {
		t.Fatalf("new devices start offline, got %s", dto.Status)
	}
	if len(events.events) != 1 || events.events[0].Type != pubsub.DeviceEventRegistered {
		t.Fatalf("expected registered event, got %+v", events.events)
	}
}

func TestRegisterDuplicateCode(t *testing.T) {
	svc, _, _, _ := buildDeviceService(t)

	if _, err := svc.Register(context.Background(), RegisterDeviceRequest{Name: "A", Code: "LOBBY1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), RegisterDeviceRequest{Name: "B", Code: "lobby1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestHeartbeatBringsDeviceOnline(t *testing.T) {
	svc, repo, _, events := buildDeviceService(t)

	dto, err := svc.Register(context.Background(), RegisterDeviceRequest{Name: "Lobby TV"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Heartbeat(context.Background(), dto.ID)
	if err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if resp.Status != enums.DeviceStatusOnline {
		t.Fatalf("expected online after heartbeat, got %s", resp.Status)
	}
	if len(repo.heartbeats) != 1 {
		t.Fatalf("expected one heartbeat recorded, got %d", len(repo.heartbeats))
	}

	var online int
	for _, e := range events.events {
		if e.Type == pubsub.DeviceEventOnline {
			online++
		}
	}
	if online != 1 {
		t.Fatalf("expected one online event, got %d", online)
	}

	// A second heartbeat while already online should not re-announce.
	if _, err := svc.Heartbeat(context.Background(), dto.ID); err != nil {
		t.Fatalf("second heartbeat: %v", err)
	}
	online = 0
	for _, e := range events.events {
		if e.Type == pubsub.DeviceEventOnline {
			online++
		}
	}
	if online != 1 {
		t.Fatalf("expected online event only on transition, got %d", online)
	}
}

func TestHeartbeatUnknownDevice(t *testing.T) {
	svc, _, _, _ := buildDeviceService(t)

	_, err := svc.Heartbeat(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssignPlaylist(t *testing.T) {
	svc, repo, playlists, events := buildDeviceService(t)

	dto, err := svc.Register(context.Background(), RegisterDeviceRequest{Name: "Lobby TV"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	playlistID := uuid.New()
	playlists.playlists[playlistID] = &models.Playlist{ID: playlistID, Name: "Morning loop"}

	if err := svc.AssignPlaylist(context.Background(), dto.ID, AssignPlaylistRequest{PlaylistID: playlistID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if repo.active[dto.ID] != playlistID {
		t.Fatalf("expected active playlist %s, got %s", playlistID, repo.active[dto.ID])
	}

	view, err := svc.Get(context.Background(), dto.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.ActivePlaylist == nil || view.ActivePlaylist.ID != playlistID {
		t.Fatalf("expected active playlist on device view, got %+v", view.ActivePlaylist)
	}

	found := false
	for _, e := range events.events {
		if e.Type == pubsub.DeviceEventAssigned {
			found = true
		}
	}
	if !found {
		t.Fatal("expected playlist assigned event")
	}
}

func TestAssignPlaylistMissingPlaylist(t *testing.T) {
	svc, _, _, _ := buildDeviceService(t)

	dto, err := svc.Register(context.Background(), RegisterDeviceRequest{Name: "Lobby TV"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	err = svc.AssignPlaylist(context.Background(), dto.ID, AssignPlaylistRequest{PlaylistID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateDevice(t *testing.T) {
	svc, _, _, _ := buildDeviceService(t)

	dto, err := svc.Register(context.Background(), RegisterDeviceRequest{Name: "Lobby TV"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	name := "Reception TV"
	updated, err := svc.Update(context.Background(), dto.ID, UpdateDeviceRequest{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected renamed device, got %q", updated.Name)
	}

	empty := "   "
	if _, err := svc.Update(context.Background(), dto.ID, UpdateDeviceRequest{Name: &empty}); err == nil {
		t.Fatal("expected validation error for blank name")
	}
}
