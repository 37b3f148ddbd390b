package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *captureSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *captureSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *captureSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func validEvent(stage Stage, itemID int) Event {
	return Event{
		RunID:  uuid.New(),
		TS:     time.Now().UTC(),
		Stage:  stage,
		ItemID: itemID,
	}
}

func TestHubDeliversEventsToSinks(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: 10 * time.Millisecond}, sink)

	hub.Emit(validEvent(StageRunStart, 0))
	hub.Emit(validEvent(StageSubmitOK, 42))

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Close(context.Background()))
	require.True(t, sink.closed)
}

func TestHubCloseFlushesPending(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: time.Hour, MaxBatchEvents: 1000}, sink)

	for i := 1; i <= 10; i++ {
		hub.Emit(validEvent(StageSubmitOK, i))
	}
	require.NoError(t, hub.Close(context.Background()))
	require.Len(t, sink.snapshot(), 10)
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: 10 * time.Millisecond}, sink)

	hub.Emit(Event{Stage: StageSubmitOK}) // missing run id and timestamp
	hub.Emit(validEvent(StageSubmitOK, 1))

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.Close(context.Background()))
}

func TestHubEmitDuringCloseDoesNotPanic(t *testing.T) {
	t.Parallel()

	sink := &captureSink{}
	hub := NewHub(Config{MaxBatchWait: time.Millisecond}, sink)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 1; i <= 100; i++ {
				hub.Emit(validEvent(StageSubmitOK, i))
			}
		}()
	}
	require.NoError(t, hub.Close(context.Background()))
	wg.Wait()

	// Closing twice stays a no-op.
	require.NoError(t, hub.Close(context.Background()))
	require.True(t, sink.closed)
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	evt := validEvent(StageSubmitOK, 1)
	require.NoError(t, evt.Validate())

	missingItem := validEvent(StageSubmitOK, 0)
	require.Error(t, missingItem.Validate())

	unknown := validEvent(Stage("BOGUS"), 1)
	require.Error(t, unknown.Validate())

	negative := validEvent(StageSubmitOK, 1)
	negative.Seconds = -1
	require.Error(t, negative.Validate())
}

func TestNilHubEmitIsSafe(t *testing.T) {
	t.Parallel()

	var hub *Hub
	hub.Emit(validEvent(StageRunStart, 0))
	require.NoError(t, hub.Close(context.Background()))
}
