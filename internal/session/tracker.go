package session

import (
	"log/slog"
	"sync"
	"time"
)

// Observer receives session lifecycle events.
type Observer interface {
	SessionOpened(mode Mode)
	SessionReleased(mode Mode, lifetime time.Duration)
}

// Tracker opens sessions and accounts for their release.
type Tracker struct {
	log      *slog.Logger
	newID    IDGenerator
	observer Observer

	mu       sync.Mutex
	live     map[*Session]struct{}
	released uint64
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithSessionObserver attaches an Observer.
func WithSessionObserver(o Observer) TrackerOption {
	return func(t *Tracker) {
		t.observer = o
	}
}

// NewTracker creates a Tracker using newID for session identifiers.
func NewTracker(log *slog.Logger, newID IDGenerator, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		log:   log.With("component", "session"),
		newID: newID,
		live:  make(map[*Session]struct{}, 16),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Open binds a fresh session in the given mode.
func (t *Tracker) Open(mode Mode) *Session {
	s := &Session{}
	s.bind(t.newID(), mode, t.release)

	t.mu.Lock()
	t.live[s] = struct{}{}
	t.mu.Unlock()

	if t.observer != nil {
		t.observer.SessionOpened(mode)
	}

	t.log.Debug("Session opened", "session", s.id, "mode", mode)

	return s
}

// release is called exactly once per session by Session.Close.
func (t *Tracker) release(s *Session) {
	t.mu.Lock()
	delete(t.live, s)
	t.released++
	t.mu.Unlock()

	lifetime := time.Since(s.opened)
	if t.observer != nil {
		t.observer.SessionReleased(s.mode, lifetime)
	}

	t.log.Debug("Session released", "session", s.id, "mode", s.mode, "lifetime", lifetime)
}

// Active returns the number of sessions not yet released.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.live)
}

// Released returns the total number of releases so far.
func (t *Tracker) Released() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.released
}

// CloseAll releases every live session, for shutdown.
func (t *Tracker) CloseAll() int {
	t.mu.Lock()
	sessions := make([]*Session, 0, len(t.live))
	for s := range t.live {
		sessions = append(sessions, s)
	}
	t.mu.Unlock()

	closed := 0
	for _, s := range sessions {
		if s.Close() {
			closed++
		}
	}

	return closed
}
