package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	toolserrors "github.com/wagiedev/project-tools-mcp/internal/errors"
)

// Mode is the response mode of a session.
type Mode string

const (
	// ModeBuffered answers each request with a single JSON response.
	ModeBuffered Mode = "buffered"
	// ModeStreaming holds a long-lived event stream until the peer disconnects.
	ModeStreaming Mode = "streaming"
)

// State is a lifecycle state.
type State int32

const (
	// StateIdle is a session that has not been bound to a connection.
	StateIdle State = iota
	// StateBound is a session bound to a connection, not yet serving.
	StateBound
	// StateServing is a session handling its request or stream.
	StateServing
	// StateClosed is a released session.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBound:
		return "bound"
	case StateServing:
		return "serving"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Session is the per-connection state of one inbound request or stream.
type Session struct {
	id     string
	mode   Mode
	opened time.Time

	state     atomic.Int32
	closeOnce sync.Once
	onRelease func(*Session)
}

// ID returns the session identifier, empty in session-less mode.
func (s *Session) ID() string { return s.id }

// Mode returns the response mode.
func (s *Session) Mode() Mode { return s.mode }

// Opened returns when the session was bound.
func (s *Session) Opened() time.Time { return s.opened }

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// bind moves an idle session to Bound.
func (s *Session) bind(id string, mode Mode, onRelease func(*Session)) {
	s.id = id
	s.mode = mode
	s.opened = time.Now()
	s.onRelease = onRelease
	s.state.Store(int32(StateBound))
}

// Serve moves a bound session to Serving. It fails if the session was
// already closed or is serving.
func (s *Session) Serve() error {
	if s.state.CompareAndSwap(int32(StateBound), int32(StateServing)) {
		return nil
	}

	if s.State() == StateClosed {
		return toolserrors.ErrSessionClosed
	}

	return fmt.Errorf("session %q cannot serve from state %s", s.id, s.State())
}

// Close releases the session. Only the first call releases; later calls
// return false and do nothing.
func (s *Session) Close() bool {
	released := false

	s.closeOnce.Do(func() {
		released = true
		s.state.Store(int32(StateClosed))

		if s.onRelease != nil {
			s.onRelease(s)
		}
	})

	return released
}

type contextKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)

	return s, ok
}
