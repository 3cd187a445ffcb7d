package engine

import "time"

// ExecutionEvent is a lifecycle event during workflow execution,
// delivered to ExecutionNotifier implementations (logging, websocket
// broadcast) independent of the TaskRecorder/RunStore bookkeeping the
// scheduler itself performs.
type ExecutionEvent struct {
	Type        string
	RunID       string
	WorkflowID  string
	NodeID      string
	NodeTitle   string
	NodeType    string
	Status      string
	Error       error
	Output      any
	DurationMs  int64
	Message     string
	Timestamp   time.Time
	Input       map[string]any

	IsDownstreamOfPause bool
}
