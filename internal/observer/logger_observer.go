package observer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nodeflow/nodeflow/pkg/engine"
)

// LoggerObserver logs execution events through log/slog.
type LoggerObserver struct {
	name   string
	log    *slog.Logger
	filter EventFilter
}

// LoggerObserverOption configures LoggerObserver.
type LoggerObserverOption func(*LoggerObserver)

// WithLoggerInstance sets the slog.Logger the observer writes to.
func WithLoggerInstance(l *slog.Logger) LoggerObserverOption {
	return func(o *LoggerObserver) {
		o.log = l
	}
}

// WithLoggerFilter restricts which events this observer logs.
func WithLoggerFilter(filter EventFilter) LoggerObserverOption {
	return func(o *LoggerObserver) {
		o.filter = filter
	}
}

// NewLoggerObserver creates a logger observer writing to slog.Default
// unless overridden with WithLoggerInstance.
func NewLoggerObserver(opts ...LoggerObserverOption) *LoggerObserver {
	obs := &LoggerObserver{
		name: "logger",
		log:  slog.Default(),
	}

	for _, opt := range opts {
		opt(obs)
	}

	return obs
}

// Name returns the observer's name.
func (o *LoggerObserver) Name() string {
	return o.name
}

// Filter returns the event filter, if any.
func (o *LoggerObserver) Filter() EventFilter {
	return o.filter
}

// OnEvent logs the event at info level, or error level if it carries one.
func (o *LoggerObserver) OnEvent(ctx context.Context, event engine.ExecutionEvent) error {
	fields := []any{
		"event_type", event.Type,
		"run_id", event.RunID,
		"workflow_id", event.WorkflowID,
		"status", event.Status,
	}

	if event.NodeID != "" {
		fields = append(fields, "node_id", event.NodeID, "node_title", event.NodeTitle, "node_type", event.NodeType)
	}

	if event.DurationMs > 0 {
		fields = append(fields, "duration_ms", event.DurationMs)
	}

	if event.IsDownstreamOfPause {
		fields = append(fields, "downstream_of_pause", true)
	}

	msg := fmt.Sprintf("workflow event: %s", event.Type)

	if event.Error != nil {
		fields = append(fields, "error", event.Error.Error())
		o.log.ErrorContext(ctx, msg, fields...)
	} else {
		o.log.InfoContext(ctx, msg, fields...)
	}

	return nil
}
