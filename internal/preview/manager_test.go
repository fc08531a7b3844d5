package preview

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/config"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
)

func newTestManager(maxSessions int, ttl time.Duration) *Manager {
	return NewManager(config.PreviewConfig{
		SessionTTL:      ttl,
		JanitorInterval: time.Minute,
		MaxSessions:     maxSessions,
	}, nil, nil)
}

func TestManagerStartAndGet(t *testing.T) {
	m := newTestManager(4, time.Hour)
	defer m.Close()

	session, err := m.Start(uuid.New(), []Slide{imageSlide("a.png", 10000)})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	got, err := m.Get(session.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID() != session.ID() {
		t.Fatalf("got session %s, want %s", got.ID(), session.ID())
	}
}

func TestManagerGetUnknownSession(t *testing.T) {
	m := newTestManager(4, time.Hour)
	defer m.Close()

	_, err := m.Get(uuid.NewString())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestManagerSessionCap(t *testing.T) {
	m := newTestManager(1, time.Hour)
	defer m.Close()

	if _, err := m.Start(uuid.New(), nil); err != nil {
		t.Fatalf("first start: %v", err)
	}

	_, err := m.Start(uuid.New(), nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestManagerStopIsIdempotent(t *testing.T) {
	m := newTestManager(4, time.Hour)
	defer m.Close()

	session, err := m.Start(uuid.New(), []Slide{imageSlide("a.png", 10000)})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	m.Stop(session.ID())
	m.Stop(session.ID())
	m.Stop(uuid.NewString())

	if _, err := m.Get(session.ID()); err == nil {
		t.Fatal("stopped session should be gone")
	}
	if snap := session.Snapshot(); snap.State != StateStopped {
		t.Fatalf("session state = %s, want stopped", snap.State)
	}
}

func TestManagerReapsIdleSessions(t *testing.T) {
	m := newTestManager(4, 10*time.Minute)
	defer m.Close()

	session, err := m.Start(uuid.New(), []Slide{imageSlide("a.png", 10000)})
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	m.reapIdle(time.Now())
	if _, err := m.Get(session.ID()); err != nil {
		t.Fatalf("fresh session should survive the janitor: %v", err)
	}

	m.reapIdle(time.Now().Add(time.Hour))
	if _, err := m.Get(session.ID()); err == nil {
		t.Fatal("idle session should have been reaped")
	}
	if snap := session.Snapshot(); snap.State != StateStopped {
		t.Fatalf("reaped session state = %s, want stopped", snap.State)
	}
}
