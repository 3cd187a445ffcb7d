package observer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nodeflow/nodeflow/pkg/engine"
)

// ObserverManager fans out execution events to registered observers
// without blocking the scheduler goroutine that produced them, and
// without letting one observer's panic or error affect another's. It
// implements engine.ExecutionNotifier.
type ObserverManager struct {
	observers []Observer
	log       *slog.Logger
	mu        sync.RWMutex
}

// ManagerOption configures ObserverManager.
type ManagerOption func(*ObserverManager)

// WithLogger sets the logger the manager uses for its own
// diagnostics, not an observer's: panic recovery, failed notifies.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *ObserverManager) {
		m.log = l
	}
}

// NewObserverManager creates an empty observer manager.
func NewObserverManager(opts ...ManagerOption) *ObserverManager {
	mgr := &ObserverManager{
		observers: make([]Observer, 0),
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(mgr)
	}

	return mgr
}

// Register adds an observer to the manager.
func (m *ObserverManager) Register(obs Observer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.observers {
		if existing.Name() == obs.Name() {
			return fmt.Errorf("observer with name %q already registered", obs.Name())
		}
	}

	m.observers = append(m.observers, obs)
	return nil
}

// Unregister removes an observer by name.
func (m *ObserverManager) Unregister(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, obs := range m.observers {
		if obs.Name() == name {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("observer %q not found", name)
}

// Notify sends event to every registered observer concurrently. It
// never blocks on a slow observer and never lets one observer's
// failure affect another's delivery.
func (m *ObserverManager) Notify(ctx context.Context, event engine.ExecutionEvent) {
	m.mu.RLock()
	observersCopy := make([]Observer, len(m.observers))
	copy(observersCopy, m.observers)
	m.mu.RUnlock()

	// Notifications must outlive a canceled run context, e.g. a
	// database observer recording execution.failed after the caller
	// gave up. WithoutCancel keeps trace/request values, drops cancelation.
	observerCtx := context.WithoutCancel(ctx)

	for _, obs := range observersCopy {
		go m.notifyObserver(observerCtx, obs, event)
	}
}

func (m *ObserverManager) notifyObserver(ctx context.Context, obs Observer, event engine.ExecutionEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.log.ErrorContext(ctx, "observer panic recovered",
				"observer", obs.Name(),
				"event_type", event.Type,
				"panic", r,
			)
		}
	}()

	if filter := obs.Filter(); filter != nil && !filter.ShouldNotify(event) {
		return
	}

	if err := obs.OnEvent(ctx, event); err != nil {
		m.log.ErrorContext(ctx, "observer notification failed",
			"observer", obs.Name(),
			"event_type", event.Type,
			"error", err,
		)
	}
}

// Count returns the number of registered observers.
func (m *ObserverManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.observers)
}
