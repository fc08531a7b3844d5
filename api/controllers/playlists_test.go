package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/internal/playlists"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
	"github.com/vitrine-labs/signage-backend/pkg/logger"
)

type testPlaylistsService struct {
	listFn        func(ctx context.Context) ([]playlists.PlaylistDTO, error)
	createFn      func(ctx context.Context, req playlists.CreatePlaylistRequest) (*playlists.PlaylistDTO, error)
	getFn         func(ctx context.Context, id uuid.UUID) (*playlists.PlaylistDTO, error)
	updateFn      func(ctx context.Context, id uuid.UUID, req playlists.UpdatePlaylistRequest) (*playlists.PlaylistDTO, error)
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	listItemsFn   func(ctx context.Context, playlistID uuid.UUID) ([]playlists.ItemDTO, error)
	addItemFn     func(ctx context.Context, playlistID uuid.UUID, req playlists.AddItemRequest) (*playlists.ItemDTO, error)
	moveItemFn    func(ctx context.Context, playlistID, itemID uuid.UUID, direction string) ([]playlists.ItemDTO, error)
	setDurationFn func(ctx context.Context, playlistID, itemID uuid.UUID, duration string) (*playlists.ItemDTO, error)
	removeItemFn  func(ctx context.Context, playlistID, itemID uuid.UUID) error
}

func (s *testPlaylistsService) List(ctx context.Context) ([]playlists.PlaylistDTO, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *testPlaylistsService) Create(ctx context.Context, req playlists.CreatePlaylistRequest) (*playlists.PlaylistDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, req)
	}
	return &playlists.PlaylistDTO{}, nil
}

func (s *testPlaylistsService) Get(ctx context.Context, id uuid.UUID) (*playlists.PlaylistDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &playlists.PlaylistDTO{}, nil
}

func (s *testPlaylistsService) Update(ctx context.Context, id uuid.UUID, req playlists.UpdatePlaylistRequest) (*playlists.PlaylistDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, req)
	}
	return &playlists.PlaylistDTO{}, nil
}

func (s *testPlaylistsService) Delete(ctx context.Context, id uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *testPlaylistsService) ListItems(ctx context.Context, playlistID uuid.UUID) ([]playlists.ItemDTO, error) {
	if s.listItemsFn != nil {
		return s.listItemsFn(ctx, playlistID)
	}
	return nil, nil
}

func (s *testPlaylistsService) AddItem(ctx context.Context, playlistID uuid.UUID, req playlists.AddItemRequest) (*playlists.ItemDTO, error) {
	if s.addItemFn != nil {
		return s.addItemFn(ctx, playlistID, req)
	}
	return &playlists.ItemDTO{}, nil
}

func (s *testPlaylistsService) MoveItem(ctx context.Context, playlistID, itemID uuid.UUID, direction string) ([]playlists.ItemDTO, error) {
	if s.moveItemFn != nil {
		return s.moveItemFn(ctx, playlistID, itemID, direction)
	}
	return nil, nil
}

func (s *testPlaylistsService) SetItemDuration(ctx context.Context, playlistID, itemID uuid.UUID, duration string) (*playlists.ItemDTO, error) {
	if s.setDurationFn != nil {
		return s.setDurationFn(ctx, playlistID, itemID, duration)
	}
	return &playlists.ItemDTO{}, nil
}

func (s *testPlaylistsService) RemoveItem(ctx context.Context, playlistID, itemID uuid.UUID) error {
	if s.removeItemFn != nil {
		return s.removeItemFn(ctx, playlistID, itemID)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParams(req *http.Request, pairs ...string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		routeCtx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestPlaylistItemsMoveSuccess(t *testing.T) {
	playlistID := uuid.New()
	itemID := uuid.New()
	called := false
	svc := &testPlaylistsService{
		moveItemFn: func(ctx context.Context, pid, iid uuid.UUID, direction string) ([]playlists.ItemDTO, error) {
			called = true
			if pid != playlistID {
				t.Fatalf("unexpected playlist %s", pid)
			}
			if iid != itemID {
				t.Fatalf("unexpected item %s", iid)
			}
			if direction != "up" {
				t.Fatalf("unexpected direction %q", direction)
			}
			return []playlists.ItemDTO{
				{ID: iid, OrderNum: 1},
				{ID: uuid.New(), OrderNum: 2},
			}, nil
		},
	}

	body := strings.NewReader(`{"direction":"up"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+playlistID.String()+"/items/"+itemID.String()+"/move", body)
	req = addRouteParams(req, "id", playlistID.String(), "itemID", itemID.String())

	resp := httptest.NewRecorder()
	PlaylistItemsMove(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data []playlists.ItemDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 items got %d", len(envelope.Data))
	}
	if envelope.Data[0].ID != itemID || envelope.Data[0].OrderNum != 1 {
		t.Fatalf("moved item not first in refreshed order: %+v", envelope.Data[0])
	}
}

func TestPlaylistItemsMoveRejectsUnknownDirection(t *testing.T) {
	called := false
	svc := &testPlaylistsService{
		moveItemFn: func(ctx context.Context, pid, iid uuid.UUID, direction string) ([]playlists.ItemDTO, error) {
			called = true
			return nil, nil
		},
	}

	body := strings.NewReader(`{"direction":"sideways"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+uuid.NewString()+"/items/"+uuid.NewString()+"/move", body)
	req = addRouteParams(req, "id", uuid.NewString(), "itemID", uuid.NewString())

	resp := httptest.NewRecorder()
	PlaylistItemsMove(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatal("service should not run on invalid direction")
	}
}

func TestPlaylistItemsMoveInvalidItemID(t *testing.T) {
	body := strings.NewReader(`{"direction":"down"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+uuid.NewString()+"/items/invalid/move", body)
	req = addRouteParams(req, "id", uuid.NewString(), "itemID", "invalid")

	resp := httptest.NewRecorder()
	PlaylistItemsMove(&testPlaylistsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPlaylistItemsMoveStaleSnapshot(t *testing.T) {
	svc := &testPlaylistsService{
		moveItemFn: func(ctx context.Context, pid, iid uuid.UUID, direction string) ([]playlists.ItemDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStale, "item moved by another operator")
		},
	}

	body := strings.NewReader(`{"direction":"up"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+uuid.NewString()+"/items/"+uuid.NewString()+"/move", body)
	req = addRouteParams(req, "id", uuid.NewString(), "itemID", uuid.NewString())

	resp := httptest.NewRecorder()
	PlaylistItemsMove(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != "STALE_SNAPSHOT" {
		t.Fatalf("expected STALE_SNAPSHOT got %q", envelope.Error.Code)
	}
}

func TestPlaylistItemsAddSuccess(t *testing.T) {
	playlistID := uuid.New()
	mediaID := uuid.New()
	svc := &testPlaylistsService{
		addItemFn: func(ctx context.Context, pid uuid.UUID, req playlists.AddItemRequest) (*playlists.ItemDTO, error) {
			if pid != playlistID {
				t.Fatalf("unexpected playlist %s", pid)
			}
			if req.ItemType != "image" || req.ItemID != mediaID {
				t.Fatalf("unexpected request %+v", req)
			}
			return &playlists.ItemDTO{ID: uuid.New(), PlaylistID: pid, ItemType: req.ItemType, ItemID: req.ItemID, OrderNum: 3}, nil
		},
	}

	body := strings.NewReader(`{"item_type":"image","item_id":"` + mediaID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+playlistID.String()+"/items", body)
	req = addRouteParams(req, "id", playlistID.String())

	resp := httptest.NewRecorder()
	PlaylistItemsAdd(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data playlists.ItemDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.OrderNum != 3 {
		t.Fatalf("expected order 3 got %d", envelope.Data.OrderNum)
	}
}

func TestPlaylistItemsAddRejectsUnknownType(t *testing.T) {
	body := strings.NewReader(`{"item_type":"pdf","item_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+uuid.NewString()+"/items", body)
	req = addRouteParams(req, "id", uuid.NewString())

	resp := httptest.NewRecorder()
	PlaylistItemsAdd(&testPlaylistsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPlaylistItemsSetDurationClears(t *testing.T) {
	playlistID := uuid.New()
	itemID := uuid.New()
	var got string
	svc := &testPlaylistsService{
		setDurationFn: func(ctx context.Context, pid, iid uuid.UUID, duration string) (*playlists.ItemDTO, error) {
			got = duration
			return &playlists.ItemDTO{ID: iid, DurationMS: 10000}, nil
		},
	}

	body := strings.NewReader(`{"duration":""}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/"+playlistID.String()+"/items/"+itemID.String(), body)
	req = addRouteParams(req, "id", playlistID.String(), "itemID", itemID.String())

	resp := httptest.NewRecorder()
	PlaylistItemsSetDuration(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got != "" {
		t.Fatalf("expected empty duration to clear override, got %q", got)
	}
}

func TestPlaylistItemsRemoveSuccess(t *testing.T) {
	playlistID := uuid.New()
	itemID := uuid.New()
	called := false
	svc := &testPlaylistsService{
		removeItemFn: func(ctx context.Context, pid, iid uuid.UUID) error {
			called = true
			if pid != playlistID || iid != itemID {
				t.Fatalf("unexpected ids %s %s", pid, iid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/"+playlistID.String()+"/items/"+itemID.String(), nil)
	req = addRouteParams(req, "id", playlistID.String(), "itemID", itemID.String())

	resp := httptest.NewRecorder()
	PlaylistItemsRemove(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["status"] != "removed" {
		t.Fatalf("unexpected body %v", envelope.Data)
	}
}

func TestPlaylistsCreateRejectsMissingName(t *testing.T) {
	body := strings.NewReader(`{"description":"lobby loop"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", body)

	resp := httptest.NewRecorder()
	PlaylistsCreate(&testPlaylistsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPlaylistsGetNotFound(t *testing.T) {
	svc := &testPlaylistsService{
		getFn: func(ctx context.Context, id uuid.UUID) (*playlists.PlaylistDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "playlist not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/"+uuid.NewString(), nil)
	req = addRouteParams(req, "id", uuid.NewString())

	resp := httptest.NewRecorder()
	PlaylistsGet(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
