package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	toolserrors "github.com/wagiedev/project-tools-mcp/internal/errors"
)

func newTracker(t *testing.T, policy IDPolicy, opts ...TrackerOption) *Tracker {
	t.Helper()

	gen, err := NewIDGenerator(policy)
	require.NoError(t, err)

	return NewTracker(slog.New(slog.NewTextHandler(io.Discard, nil)), gen, opts...)
}

type countingObserver struct {
	mu       sync.Mutex
	opened   map[Mode]int
	released map[Mode]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{opened: map[Mode]int{}, released: map[Mode]int{}}
}

func (o *countingObserver) SessionOpened(mode Mode) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened[mode]++
}

func (o *countingObserver) SessionReleased(mode Mode, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.released[mode]++
}

func TestNewIDGenerator(t *testing.T) {
	t.Run("ulid ids are unique and parseable", func(t *testing.T) {
		gen, err := NewIDGenerator(IDPolicyULID)
		require.NoError(t, err)

		seen := make(map[string]struct{}, 1000)
		for range 1000 {
			id := gen()
			_, err := ulid.Parse(id)
			require.NoError(t, err)

			_, dup := seen[id]
			require.False(t, dup, "duplicate id %s", id)
			seen[id] = struct{}{}
		}
	})

	t.Run("empty policy defaults to ulid", func(t *testing.T) {
		gen, err := NewIDGenerator("")
		require.NoError(t, err)
		require.Len(t, gen(), 26)
	})

	t.Run("none yields empty ids", func(t *testing.T) {
		gen, err := NewIDGenerator(IDPolicyNone)
		require.NoError(t, err)
		require.Empty(t, gen())
	})

	t.Run("unknown policy is rejected", func(t *testing.T) {
		_, err := NewIDGenerator("uuid")
		require.Error(t, err)
	})
}

func TestSessionLifecycle(t *testing.T) {
	obs := newCountingObserver()
	tracker := newTracker(t, IDPolicyULID, WithSessionObserver(obs))

	s := tracker.Open(ModeStreaming)
	require.Equal(t, StateBound, s.State())
	require.Equal(t, ModeStreaming, s.Mode())
	require.NotEmpty(t, s.ID())
	require.False(t, s.Opened().IsZero())
	require.Equal(t, 1, tracker.Active())

	require.NoError(t, s.Serve())
	require.Equal(t, StateServing, s.State())
	require.Error(t, s.Serve(), "a serving session cannot start serving again")

	require.True(t, s.Close())
	require.Equal(t, StateClosed, s.State())
	require.Equal(t, 0, tracker.Active())

	require.False(t, s.Close(), "second close must be a no-op")
	require.Equal(t, uint64(1), tracker.Released())
	require.ErrorIs(t, s.Serve(), toolserrors.ErrSessionClosed)

	require.Equal(t, 1, obs.opened[ModeStreaming])
	require.Equal(t, 1, obs.released[ModeStreaming])
}

func TestSessionCloseIsIdempotentUnderRace(t *testing.T) {
	tracker := newTracker(t, IDPolicyULID)
	s := tracker.Open(ModeBuffered)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		releases int
	)

	for range 32 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if s.Close() {
				mu.Lock()
				releases++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, 1, releases)
	require.Equal(t, uint64(1), tracker.Released())
	require.Equal(t, 0, tracker.Active())
}

func TestSessionsAreNeverShared(t *testing.T) {
	tracker := newTracker(t, IDPolicyULID)

	a := tracker.Open(ModeBuffered)
	b := tracker.Open(ModeBuffered)

	require.NotSame(t, a, b)
	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, 2, tracker.Active())

	a.Close()
	require.Equal(t, StateBound, b.State())
	require.Equal(t, 1, tracker.Active())
}

func TestSessionlessMode(t *testing.T) {
	tracker := newTracker(t, IDPolicyNone)

	a := tracker.Open(ModeBuffered)
	b := tracker.Open(ModeBuffered)

	require.Empty(t, a.ID())
	require.Empty(t, b.ID())
	require.NotSame(t, a, b)
	require.Equal(t, 2, tracker.Active())
}

func TestTrackerCloseAll(t *testing.T) {
	tracker := newTracker(t, IDPolicyULID)

	first := tracker.Open(ModeStreaming)
	tracker.Open(ModeBuffered)
	first.Close()

	require.Equal(t, 1, tracker.CloseAll())
	require.Equal(t, 0, tracker.Active())
	require.Equal(t, uint64(2), tracker.Released())
}

func TestSessionContext(t *testing.T) {
	tracker := newTracker(t, IDPolicyULID)
	s := tracker.Open(ModeBuffered)

	got, ok := FromContext(NewContext(context.Background(), s))
	require.True(t, ok)
	require.Same(t, s, got)

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "bound", StateBound.String())
	require.Equal(t, "serving", StateServing.String())
	require.Equal(t, "closed", StateClosed.String())
	require.Equal(t, "State(9)", State(9).String())
}
