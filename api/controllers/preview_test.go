package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/internal/preview"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
)

type testPreviewService struct {
	startFn      func(ctx context.Context, playlistID uuid.UUID) (*preview.SessionDTO, error)
	getFn        func(ctx context.Context, sessionID string) (*preview.SessionDTO, error)
	nextFn       func(ctx context.Context, sessionID string) (*preview.SessionDTO, error)
	prevFn       func(ctx context.Context, sessionID string) (*preview.SessionDTO, error)
	autoplayFn   func(ctx context.Context, sessionID string) (*preview.SessionDTO, error)
	mediaEndedFn func(ctx context.Context, sessionID string) (*preview.SessionDTO, error)
	stopFn       func(ctx context.Context, sessionID string) error
}

func (s *testPreviewService) Start(ctx context.Context, playlistID uuid.UUID) (*preview.SessionDTO, error) {
	if s.startFn != nil {
		return s.startFn(ctx, playlistID)
	}
	return &preview.SessionDTO{}, nil
}

func (s *testPreviewService) Get(ctx context.Context, sessionID string) (*preview.SessionDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, sessionID)
	}
	return &preview.SessionDTO{}, nil
}

func (s *testPreviewService) Next(ctx context.Context, sessionID string) (*preview.SessionDTO, error) {
	if s.nextFn != nil {
		return s.nextFn(ctx, sessionID)
	}
	return &preview.SessionDTO{}, nil
}

func (s *testPreviewService) Prev(ctx context.Context, sessionID string) (*preview.SessionDTO, error) {
	if s.prevFn != nil {
		return s.prevFn(ctx, sessionID)
	}
	return &preview.SessionDTO{}, nil
}

func (s *testPreviewService) ToggleAutoplay(ctx context.Context, sessionID string) (*preview.SessionDTO, error) {
	if s.autoplayFn != nil {
		return s.autoplayFn(ctx, sessionID)
	}
	return &preview.SessionDTO{}, nil
}

func (s *testPreviewService) MediaEnded(ctx context.Context, sessionID string) (*preview.SessionDTO, error) {
	if s.mediaEndedFn != nil {
		return s.mediaEndedFn(ctx, sessionID)
	}
	return &preview.SessionDTO{}, nil
}

func (s *testPreviewService) Stop(ctx context.Context, sessionID string) error {
	if s.stopFn != nil {
		return s.stopFn(ctx, sessionID)
	}
	return nil
}

func TestPreviewStartSuccess(t *testing.T) {
	playlistID := uuid.New()
	svc := &testPreviewService{
		startFn: func(ctx context.Context, pid uuid.UUID) (*preview.SessionDTO, error) {
			if pid != playlistID {
				t.Fatalf("unexpected playlist %s", pid)
			}
			return &preview.SessionDTO{
				ID:         "sess-1",
				PlaylistID: pid,
				State:      preview.StateShowing,
				Index:      0,
				Autoplay:   true,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/"+playlistID.String()+"/preview", nil)
	req = addRouteParams(req, "id", playlistID.String())

	resp := httptest.NewRecorder()
	PreviewStart(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data preview.SessionDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.ID != "sess-1" {
		t.Fatalf("missing session id in %+v", envelope.Data)
	}
	if envelope.Data.State != preview.StateShowing || !envelope.Data.Autoplay {
		t.Fatalf("unexpected initial state %+v", envelope.Data)
	}
}

func TestPreviewStartInvalidPlaylistID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists/invalid/preview", nil)
	req = addRouteParams(req, "id", "invalid")

	resp := httptest.NewRecorder()
	PreviewStart(&testPreviewService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPreviewNextPassesSessionID(t *testing.T) {
	var got string
	svc := &testPreviewService{
		nextFn: func(ctx context.Context, sid string) (*preview.SessionDTO, error) {
			got = sid
			return &preview.SessionDTO{ID: sid, State: preview.StateShowing, Index: 1}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preview/sess-42/next", nil)
	req = addRouteParams(req, "sid", "sess-42")

	resp := httptest.NewRecorder()
	PreviewNext(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if got != "sess-42" {
		t.Fatalf("expected session sess-42 got %q", got)
	}
	var envelope struct {
		Data preview.SessionDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Index != 1 {
		t.Fatalf("expected index 1 got %d", envelope.Data.Index)
	}
}

func TestPreviewGetUnknownSession(t *testing.T) {
	svc := &testPreviewService{
		getFn: func(ctx context.Context, sid string) (*preview.SessionDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "preview session not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/preview/sess-missing", nil)
	req = addRouteParams(req, "sid", "sess-missing")

	resp := httptest.NewRecorder()
	PreviewGet(svc, testLogger())(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestPreviewActionMissingSessionID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/preview//next", nil)
	req = addRouteParams(req, "sid", "  ")

	resp := httptest.NewRecorder()
	PreviewNext(&testPreviewService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPreviewStopSuccess(t *testing.T) {
	called := false
	svc := &testPreviewService{
		stopFn: func(ctx context.Context, sid string) error {
			called = true
			if sid != "sess-7" {
				t.Fatalf("unexpected session %q", sid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/preview/sess-7", nil)
	req = addRouteParams(req, "sid", "sess-7")

	resp := httptest.NewRecorder()
	PreviewStop(svc, testLogger())(resp, req)

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
	if envelope.Data["status"] != "stopped" {
		t.Fatalf("unexpected body %v", envelope.Data)
	}
}
