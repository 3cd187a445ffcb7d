// Package observer fans engine.ExecutionEvent out to interested
// sinks (structured logs, websocket broadcast) independent of the
// scheduler's own TaskRecorder/RunStore bookkeeping.
package observer

import (
	"context"

	"github.com/nodeflow/nodeflow/pkg/engine"
)

// Observer receives execution lifecycle events.
type Observer interface {
	Name() string
	Filter() EventFilter
	OnEvent(ctx context.Context, event engine.ExecutionEvent) error
}

// EventFilter decides whether an observer wants a given event.
type EventFilter interface {
	ShouldNotify(event engine.ExecutionEvent) bool
}

// TypeFilter allows only the named event types through.
type TypeFilter struct {
	Types map[string]bool
}

// NewTypeFilter builds a TypeFilter from a list of event types.
func NewTypeFilter(types ...string) *TypeFilter {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return &TypeFilter{Types: set}
}

// ShouldNotify reports whether event.Type is in the allowed set.
func (f *TypeFilter) ShouldNotify(event engine.ExecutionEvent) bool {
	return f.Types[event.Type]
}
