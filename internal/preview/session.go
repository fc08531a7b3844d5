package preview

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/enums"
	"github.com/vitrine-labs/signage-backend/pkg/metrics"
)

// Advance triggers reported to metrics.
const (
	TriggerManual     = "manual"
	TriggerTimer      = "timer"
	TriggerMediaEnded = "media_ended"
)

// State of a preview session. Empty is terminal: a session started over an
// empty playlist never shows anything and accepts no transitions.
type State string

const (
	StateEmpty   State = "empty"
	StateShowing State = "showing"
	StateStopped State = "stopped"
)

// Slide is one resolved playlist entry in a preview snapshot. Unavailable
// marks items whose media file or link was deleted after they were added;
// they render as a placeholder and advance on the timer like an image.
type Slide struct {
	ItemID      uuid.UUID      `json:"item_id"`
	Kind        enums.ItemKind `json:"kind"`
	Name        string         `json:"name"`
	URL         string         `json:"url"`
	DurationMS  int64          `json:"duration_ms"`
	Unavailable bool           `json:"unavailable"`
}

// SessionDTO is the transport view of a session.
type SessionDTO struct {
	ID         string    `json:"id"`
	PlaylistID uuid.UUID `json:"playlist_id"`
	State      State     `json:"state"`
	Index      int       `json:"index"`
	Autoplay   bool      `json:"autoplay"`
	Current    *Slide    `json:"current,omitempty"`
	Slides     []Slide   `json:"slides"`
	StartedAt  time.Time `json:"started_at"`
}

// Session walks a snapshot of a playlist the way a device would, for
// operator preview. It never writes back to the playlist.
//
// All state lives behind mu. Autoplay timers carry the generation they were
// armed under; any index, autoplay or lifecycle change bumps generation, so
// a stale callback observes the mismatch and does nothing. Stop is
// synchronous: once it returns no timer can advance the session.
type Session struct {
	id         string
	playlistID uuid.UUID
	slides     []Slide
	startedAt  time.Time
	metrics    *metrics.PreviewMetrics

	mu         sync.Mutex
	state      State
	index      int
	autoplay   bool
	timer      *time.Timer
	generation uint64
	endedSeen  bool
	lastActive time.Time
}

func newSession(playlistID uuid.UUID, slides []Slide, m *metrics.PreviewMetrics) *Session {
	now := time.Now()
	s := &Session{
		id:         uuid.NewString(),
		playlistID: playlistID,
		slides:     slides,
		startedAt:  now,
		metrics:    m,
		state:      StateShowing,
		lastActive: now,
	}
	if len(slides) == 0 {
		s.state = StateEmpty
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current transport view.
func (s *Session) Snapshot() SessionDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()

	dto := SessionDTO{
		ID:         s.id,
		PlaylistID: s.playlistID,
		State:      s.state,
		Index:      s.index,
		Autoplay:   s.autoplay,
		Slides:     s.slides,
		StartedAt:  s.startedAt,
	}
	if s.state == StateShowing {
		current := s.slides[s.index]
		dto.Current = &current
	}
	return dto
}

// Next advances to the following slide, wrapping at the end. Available in
// Showing regardless of autoplay or slide kind.
func (s *Session) Next() SessionDTO {
	return s.manualAdvance(1)
}

// Prev moves to the preceding slide, wrapping at the start.
func (s *Session) Prev() SessionDTO {
	return s.manualAdvance(-1)
}

func (s *Session) manualAdvance(delta int) SessionDTO {
	s.mu.Lock()
	s.lastActive = time.Now()
	if s.state == StateShowing {
		s.advanceLocked(delta, TriggerManual)
	}
	s.mu.Unlock()
	return s.Snapshot()
}

// ToggleAutoplay flips autoplay. Turning it on arms a timer for the current
// slide unless the slide is a playable video, which advances on its ended
// event instead. Turning it off cancels any pending timer.
func (s *Session) ToggleAutoplay() SessionDTO {
	s.mu.Lock()
	s.lastActive = time.Now()
	if s.state == StateShowing {
		s.autoplay = !s.autoplay
		s.endedSeen = false
		s.rearmLocked()
	}
	s.mu.Unlock()
	return s.Snapshot()
}

// MediaEnded reports that the player finished the current video. Under
// autoplay this advances to the next slide, at most once per play-through.
// It is ignored for non-video slides and when autoplay is off.
func (s *Session) MediaEnded() SessionDTO {
	s.mu.Lock()
	s.lastActive = time.Now()
	if s.state == StateShowing && s.autoplay && !s.endedSeen {
		current := s.slides[s.index]
		if current.Kind == enums.ItemKindVideo && !current.Unavailable {
			s.endedSeen = true
			s.advanceLocked(1, TriggerMediaEnded)
		}
	}
	s.mu.Unlock()
	return s.Snapshot()
}

// Stop ends the session, cancelling any pending timer before returning.
// Safe to call more than once.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	s.state = StateStopped
	s.autoplay = false
	s.generation++
	s.cancelTimerLocked()
}

// advanceLocked moves the index and re-arms per the new slide's kind.
// Callers hold mu and have already checked state is Showing.
func (s *Session) advanceLocked(delta int, trigger string) {
	n := len(s.slides)
	s.index = ((s.index+delta)%n + n) % n
	s.endedSeen = false
	s.metrics.IncAdvance(trigger)
	s.rearmLocked()
}

// rearmLocked invalidates any armed timer and, when autoplay is on and the
// current slide advances by clock rather than by ended event, arms a fresh
// one for the slide's resolved duration.
func (s *Session) rearmLocked() {
	s.generation++
	s.cancelTimerLocked()
	if !s.autoplay || s.state != StateShowing {
		return
	}
	current := s.slides[s.index]
	if current.Kind == enums.ItemKindVideo && !current.Unavailable {
		return
	}

	gen := s.generation
	s.timer = time.AfterFunc(time.Duration(current.DurationMS)*time.Millisecond, func() {
		s.timerFired(gen)
	})
}

func (s *Session) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) timerFired(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != StateShowing || !s.autoplay {
		return
	}
	s.advanceLocked(1, TriggerTimer)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
