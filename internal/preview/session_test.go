package preview

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vitrine-labs/signage-backend/pkg/enums"
)

func imageSlide(name string, durationMS int64) Slide {
	return Slide{
		ItemID:     uuid.New(),
		Kind:       enums.ItemKindImage,
		Name:       name,
		URL:        "https://example.com/" + name,
		DurationMS: durationMS,
	}
}

func videoSlide(name string) Slide {
	return Slide{
		ItemID:     uuid.New(),
		Kind:       enums.ItemKindVideo,
		Name:       name,
		URL:        "https://example.com/" + name,
		DurationMS: 30000,
	}
}

func waitForIndex(t *testing.T, s *Session, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Snapshot().Index == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("index never reached %d, stuck at %d", want, s.Snapshot().Index)
}

func TestEmptySnapshotIsTerminal(t *testing.T) {
	s := newSession(uuid.New(), nil, nil)

	snap := s.Snapshot()
	if snap.State != StateEmpty {
		t.Fatalf("state = %s, want empty", snap.State)
	}
	if snap.Current != nil {
		t.Fatal("empty session has no current slide")
	}

	if got := s.Next(); got.State != StateEmpty || got.Index != 0 {
		t.Fatalf("next on empty changed state: %+v", got)
	}
	if got := s.Prev(); got.State != StateEmpty || got.Index != 0 {
		t.Fatalf("prev on empty changed state: %+v", got)
	}
	if got := s.ToggleAutoplay(); got.Autoplay {
		t.Fatal("autoplay must stay off in empty state")
	}
}

func TestManualNavigationWrapsAround(t *testing.T) {
	s := newSession(uuid.New(), []Slide{
		imageSlide("a.png", 10000),
		imageSlide("b.png", 10000),
		imageSlide("c.png", 10000),
	}, nil)

	if got := s.Next().Index; got != 1 {
		t.Fatalf("next = %d, want 1", got)
	}
	if got := s.Next().Index; got != 2 {
		t.Fatalf("next = %d, want 2", got)
	}
	if got := s.Next().Index; got != 0 {
		t.Fatalf("next should wrap to 0, got %d", got)
	}
	if got := s.Prev().Index; got != 2 {
		t.Fatalf("prev should wrap to 2, got %d", got)
	}
}

func TestAutoplayTimerAdvancesImages(t *testing.T) {
	s := newSession(uuid.New(), []Slide{
		imageSlide("a.png", 20),
		imageSlide("b.png", 20),
	}, nil)
	defer s.Stop()

	snap := s.ToggleAutoplay()
	if !snap.Autoplay {
		t.Fatal("autoplay should be on")
	}

	waitForIndex(t, s, 1)
	// The timer re-arms for the new slide and keeps cycling.
	waitForIndex(t, s, 0)
}

func TestAutoplayVideoWaitsForEndedEvent(t *testing.T) {
	s := newSession(uuid.New(), []Slide{
		videoSlide("a.mp4"),
		imageSlide("b.png", 10000),
	}, nil)
	defer s.Stop()

	s.ToggleAutoplay()
	time.Sleep(50 * time.Millisecond)
	if got := s.Snapshot().Index; got != 0 {
		t.Fatalf("video must not advance on a timer, index = %d", got)
	}

	if got := s.MediaEnded().Index; got != 1 {
		t.Fatalf("ended event should advance, index = %d", got)
	}
}

func TestMediaEndedIgnoredWhenNotApplicable(t *testing.T) {
	s := newSession(uuid.New(), []Slide{
		videoSlide("a.mp4"),
		imageSlide("b.png", 10000),
	}, nil)
	defer s.Stop()

	// Autoplay off: ended is a no-op.
	if got := s.MediaEnded().Index; got != 0 {
		t.Fatalf("ended without autoplay advanced to %d", got)
	}

	s.ToggleAutoplay()
	s.MediaEnded()
	// Current slide is now the image; its ended event means nothing.
	if got := s.MediaEnded().Index; got != 1 {
		t.Fatalf("ended on image slide advanced to %d", got)
	}
}

func TestManualNavigationCancelsPendingTimer(t *testing.T) {
	s := newSession(uuid.New(), []Slide{
		imageSlide("a.png", 30),
		imageSlide("b.png", 60_000),
		imageSlide("c.png", 60_000),
	}, nil)
	defer s.Stop()

	s.ToggleAutoplay()
	s.Next()
	if got := s.Snapshot().Index; got != 1 {
		t.Fatalf("index = %d, want 1", got)
	}

	// The 30ms timer armed for slide 0 must not fire after the manual move.
	time.Sleep(100 * time.Millisecond)
	if got := s.Snapshot().Index; got != 1 {
		t.Fatalf("stale timer advanced the session to %d", got)
	}
}

func TestUnavailableVideoAdvancesByTimer(t *testing.T) {
	missing := videoSlide("gone.mp4")
	missing.Unavailable = true
	missing.DurationMS = 20

	s := newSession(uuid.New(), []Slide{missing, imageSlide("b.png", 10000)}, nil)
	defer s.Stop()

	s.ToggleAutoplay()
	waitForIndex(t, s, 1)
}

func TestStopCancelsTimerSynchronously(t *testing.T) {
	s := newSession(uuid.New(), []Slide{
		imageSlide("a.png", 20),
		imageSlide("b.png", 20),
	}, nil)

	s.ToggleAutoplay()
	s.Stop()
	s.Stop()

	time.Sleep(80 * time.Millisecond)
	snap := s.Snapshot()
	if snap.State != StateStopped {
		t.Fatalf("state = %s, want stopped", snap.State)
	}
	if snap.Index != 0 {
		t.Fatalf("session advanced after stop, index = %d", snap.Index)
	}
	if snap.Autoplay {
		t.Fatal("stop must reset autoplay")
	}
}

func TestToggleAutoplayOffCancelsTimer(t *testing.T) {
	s := newSession(uuid.New(), []Slide{
		imageSlide("a.png", 30),
		imageSlide("b.png", 30),
	}, nil)
	defer s.Stop()

	s.ToggleAutoplay()
	snap := s.ToggleAutoplay()
	if snap.Autoplay {
		t.Fatal("autoplay should be off")
	}

	time.Sleep(100 * time.Millisecond)
	if got := s.Snapshot().Index; got != 0 {
		t.Fatalf("timer fired after autoplay was turned off, index = %d", got)
	}
}
