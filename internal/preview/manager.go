package preview

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/config"
	pkgerrors "github.com/vitrine-labs/signage-backend/pkg/errors"
	"github.com/vitrine-labs/signage-backend/pkg/logger"
	"github.com/vitrine-labs/signage-backend/pkg/metrics"
)

// Manager owns all live preview sessions in this process. Sessions are
// keyed by their random id; an idle janitor reaps sessions the operator
// abandoned without closing.
type Manager struct {
	cfg     config.PreviewConfig
	metrics *metrics.PreviewMetrics
	logg    *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager builds a session manager. Metrics may be nil in tests.
func NewManager(cfg config.PreviewConfig, m *metrics.PreviewMetrics, logg *logger.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		metrics:  m,
		logg:     logg,
		sessions: make(map[string]*Session),
	}
}

// Start opens a new session over the given slides.
func (m *Manager) Start(playlistID uuid.UUID, slides []Slide) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, pkgerrors.New(pkgerrors.CodeRateLimit, "preview session limit reached, close an open preview first")
	}

	session := newSession(playlistID, slides, m.metrics)
	m.sessions[session.ID()] = session
	m.metrics.SessionOpened()
	return session, nil
}

// Get returns a live session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "preview session not found")
	}
	return session, nil
}

// Stop closes and forgets a session. Unknown ids are ignored so a repeated
// close from the operator is harmless.
func (m *Manager) Stop(id string) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		session.Stop()
		m.metrics.SessionClosed()
	}
}

// Run reaps idle sessions until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.JanitorInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case <-ticker.C:
			m.reapIdle(time.Now())
		}
	}
}

// Close stops every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Stop()
		m.metrics.SessionClosed()
	}
}

func (m *Manager) reapIdle(now time.Time) {
	if m.cfg.SessionTTL <= 0 {
		return
	}
	cutoff := now.Add(-m.cfg.SessionTTL)

	m.mu.Lock()
	var expired []*Session
	for id, session := range m.sessions {
		if session.idleSince().Before(cutoff) {
			expired = append(expired, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Stop()
		m.metrics.SessionExpired()
		if m.logg != nil {
			ctx := m.logg.WithPlaylistID(context.Background(), session.playlistID.String())
			m.logg.Info(ctx, "reaped idle preview session")
		}
	}
}
