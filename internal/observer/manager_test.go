package observer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nodeflow/nodeflow/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObserverManager(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		mgr := NewObserverManager()

		assert.NotNil(t, mgr)
		assert.Equal(t, 0, mgr.Count())
		assert.NotNil(t, mgr.log)
	})

	t.Run("with logger option", func(t *testing.T) {
		log := testLogger()
		mgr := NewObserverManager(WithLogger(log))

		assert.NotNil(t, mgr)
		assert.Same(t, log, mgr.log)
	})
}

func TestObserverManager_Register(t *testing.T) {
	t.Run("register single observer", func(t *testing.T) {
		mgr := NewObserverManager()
		obs := newMockObserver("test-observer")

		err := mgr.Register(obs)
		assert.NoError(t, err)
		assert.Equal(t, 1, mgr.Count())
	})

	t.Run("register multiple observers", func(t *testing.T) {
		mgr := NewObserverManager()

		require.NoError(t, mgr.Register(newMockObserver("observer-1")))
		require.NoError(t, mgr.Register(newMockObserver("observer-2")))
		require.NoError(t, mgr.Register(newMockObserver("observer-3")))

		assert.Equal(t, 3, mgr.Count())
	})

	t.Run("register duplicate name fails", func(t *testing.T) {
		mgr := NewObserverManager()
		obs1 := newMockObserver("duplicate")
		obs2 := newMockObserver("duplicate")

		require.NoError(t, mgr.Register(obs1))

		err := mgr.Register(obs2)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
		assert.Equal(t, 1, mgr.Count())
	})

	t.Run("thread-safe registration", func(t *testing.T) {
		mgr := NewObserverManager()
		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				obs := newMockObserver(string(rune('a' + id)))
				_ = mgr.Register(obs)
			}(i)
		}

		wg.Wait()
		assert.Equal(t, 10, mgr.Count())
	})
}

func TestObserverManager_Unregister(t *testing.T) {
	t.Run("unregister existing observer", func(t *testing.T) {
		mgr := NewObserverManager()
		obs := newMockObserver("test-observer")
		require.NoError(t, mgr.Register(obs))

		err := mgr.Unregister("test-observer")
		assert.NoError(t, err)
		assert.Equal(t, 0, mgr.Count())
	})

	t.Run("unregister non-existent observer", func(t *testing.T) {
		mgr := NewObserverManager()

		err := mgr.Unregister("non-existent")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestObserverManager_Notify(t *testing.T) {
	t.Run("notify single observer", func(t *testing.T) {
		mgr := NewObserverManager()
		obs := newMockObserver("test-observer")
		mgr.Register(obs)

		event := engine.ExecutionEvent{
			Type:       engine.EventTypeExecutionStarted,
			RunID:      "run-123",
			WorkflowID: "wf-456",
			Timestamp:  time.Now(),
			Status:     "running",
		}

		mgr.Notify(context.Background(), event)
		time.Sleep(10 * time.Millisecond)

		assert.Equal(t, 1, obs.callCount())
		events := obs.recordedEvents()
		require.Len(t, events, 1)
		assert.Equal(t, engine.EventTypeExecutionStarted, events[0].Type)
	})

	t.Run("notify multiple observers", func(t *testing.T) {
		mgr := NewObserverManager()
		obs1 := newMockObserver("observer-1")
		obs2 := newMockObserver("observer-2")
		obs3 := newMockObserver("observer-3")

		mgr.Register(obs1)
		mgr.Register(obs2)
		mgr.Register(obs3)

		event := engine.ExecutionEvent{
			Type:      engine.EventTypeNodeCompleted,
			RunID:     "run-123",
			Timestamp: time.Now(),
		}

		mgr.Notify(context.Background(), event)
		time.Sleep(10 * time.Millisecond)

		assert.Equal(t, 1, obs1.callCount())
		assert.Equal(t, 1, obs2.callCount())
		assert.Equal(t, 1, obs3.callCount())
	})

	t.Run("non-blocking notification", func(t *testing.T) {
		mgr := NewObserverManager()

		slowObs := &slowObserver{name: "slow-observer", delay: 100 * time.Millisecond}
		mgr.Register(slowObs)

		event := engine.ExecutionEvent{Type: engine.EventTypeExecutionStarted, RunID: "run-123", Timestamp: time.Now()}

		start := time.Now()
		mgr.Notify(context.Background(), event)
		duration := time.Since(start)

		assert.Less(t, duration, 10*time.Millisecond, "Notify should be non-blocking")
	})

	t.Run("observer error does not propagate", func(t *testing.T) {
		mgr := NewObserverManager(WithLogger(testLogger()))

		failingObs := newMockObserver("failing-observer")
		failingObs.setErr(errors.New("observer error"))
		successObs := newMockObserver("success-observer")

		mgr.Register(failingObs)
		mgr.Register(successObs)

		event := engine.ExecutionEvent{Type: engine.EventTypeExecutionStarted, RunID: "run-123", Timestamp: time.Now()}

		mgr.Notify(context.Background(), event)
		time.Sleep(10 * time.Millisecond)

		assert.Equal(t, 1, failingObs.callCount())
		assert.Equal(t, 1, successObs.callCount())
	})

	t.Run("panic recovery", func(t *testing.T) {
		mgr := NewObserverManager(WithLogger(testLogger()))

		panicObs := &panicObserver{name: "panic-observer"}
		successObs := newMockObserver("success-observer")

		mgr.Register(panicObs)
		mgr.Register(successObs)

		event := engine.ExecutionEvent{Type: engine.EventTypeExecutionStarted, RunID: "run-123", Timestamp: time.Now()}

		assert.NotPanics(t, func() {
			mgr.Notify(context.Background(), event)
			time.Sleep(10 * time.Millisecond)
		})

		assert.Equal(t, 1, successObs.callCount())
	})

	t.Run("event filtering", func(t *testing.T) {
		mgr := NewObserverManager()

		execObs := newMockObserver("exec-observer")
		execObs.filter = NewTypeFilter(
			engine.EventTypeExecutionStarted,
			engine.EventTypeExecutionCompleted,
			engine.EventTypeExecutionFailed,
		)

		allObs := newMockObserver("all-observer")

		mgr.Register(execObs)
		mgr.Register(allObs)

		nodeEvent := engine.ExecutionEvent{Type: engine.EventTypeNodeCompleted, RunID: "run-123", Timestamp: time.Now()}
		mgr.Notify(context.Background(), nodeEvent)
		time.Sleep(10 * time.Millisecond)

		assert.Equal(t, 0, execObs.callCount(), "filtered observer should not receive node events")
		assert.Equal(t, 1, allObs.callCount(), "unfiltered observer should receive all events")

		execEvent := engine.ExecutionEvent{Type: engine.EventTypeExecutionStarted, RunID: "run-123", Timestamp: time.Now()}
		mgr.Notify(context.Background(), execEvent)
		time.Sleep(10 * time.Millisecond)

		assert.Equal(t, 1, execObs.callCount(), "filtered observer should receive execution events")
		assert.Equal(t, 2, allObs.callCount(), "unfiltered observer should receive all events")
	})

	t.Run("concurrent notifications", func(t *testing.T) {
		mgr := NewObserverManager()
		obs := newMockObserver("test-observer")
		mgr.Register(obs)

		var wg sync.WaitGroup
		const numNotifications = 100

		for i := 0; i < numNotifications; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				mgr.Notify(context.Background(), engine.ExecutionEvent{
					Type:      engine.EventTypeExecutionStarted,
					RunID:     "run-123",
					Timestamp: time.Now(),
				})
			}()
		}

		wg.Wait()
		time.Sleep(50 * time.Millisecond)

		assert.Equal(t, numNotifications, obs.callCount())
	})
}

func TestObserverManager_Count(t *testing.T) {
	mgr := NewObserverManager()
	assert.Equal(t, 0, mgr.Count())

	require.NoError(t, mgr.Register(newMockObserver("observer-1")))
	assert.Equal(t, 1, mgr.Count())

	require.NoError(t, mgr.Register(newMockObserver("observer-2")))
	assert.Equal(t, 2, mgr.Count())

	require.NoError(t, mgr.Unregister("observer-1"))
	assert.Equal(t, 1, mgr.Count())

	require.NoError(t, mgr.Unregister("observer-2"))
	assert.Equal(t, 0, mgr.Count())
}

// mockObserver records every event it receives.
type mockObserver struct {
	name   string
	filter EventFilter

	mu     sync.Mutex
	events []engine.ExecutionEvent
	calls  int32
	err    error
}

func newMockObserver(name string) *mockObserver {
	return &mockObserver{name: name}
}

func (m *mockObserver) Name() string      { return m.name }
func (m *mockObserver) Filter() EventFilter { return m.filter }

func (m *mockObserver) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockObserver) OnEvent(ctx context.Context, event engine.ExecutionEvent) error {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockObserver) callCount() int {
	return int(atomic.LoadInt32(&m.calls))
}

func (m *mockObserver) recordedEvents() []engine.ExecutionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]engine.ExecutionEvent, len(m.events))
	copy(out, m.events)
	return out
}

// slowObserver simulates an observer that blocks for delay before returning.
type slowObserver struct {
	name  string
	delay time.Duration
}

func (s *slowObserver) Name() string       { return s.name }
func (s *slowObserver) Filter() EventFilter { return nil }

func (s *slowObserver) OnEvent(ctx context.Context, event engine.ExecutionEvent) error {
	time.Sleep(s.delay)
	return nil
}

// panicObserver simulates an observer whose OnEvent panics.
type panicObserver struct {
	name string
}

func (p *panicObserver) Name() string       { return p.name }
func (p *panicObserver) Filter() EventFilter { return nil }

func (p *panicObserver) OnEvent(ctx context.Context, event engine.ExecutionEvent) error {
	panic("intentional panic for testing")
}
