package engine

import (
	"context"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// TaskRecorder is the external sink for per-node lifecycle events.
// Implementations must serialize their own writes; the scheduler calls
// these synchronously from each node's execution handle.
type TaskRecorder interface {
	CreateTask(ctx context.Context, runID, nodeID string, initialMetadata map[string]any) error
	UpdateTask(ctx context.Context, runID, nodeID string, fields TaskUpdate) error
}

// TaskUpdate carries the recognized fields a TaskRecorder update may
// set. Nil fields are left untouched by the recorder.
type TaskUpdate struct {
	Status              *models.ExecutionStatus
	Inputs              map[string]any
	Outputs             map[string]any
	EndTime             *bool // set true to stamp "now"; recorder decides the clock
	Subworkflow         any
	SubworkflowOutput   any
	Error               string
	IsDownstreamOfPause bool
}

// RunStore is the external interface for run-record persistence. The
// scheduler only needs to fetch a run and flip its status to PAUSED;
// every other status transition is the caller's responsibility.
type RunStore interface {
	GetRun(ctx context.Context, runID string) (*models.Run, error)
	SetPaused(ctx context.Context, runID string) error
}

// RunRecorder is an optional extension of RunStore for callers that
// want to create a run row before execution and set its terminal
// status afterward. storage.PostgresRunStore implements it; the
// in-memory store does not, since test callers rarely need it.
type RunRecorder interface {
	Create(ctx context.Context, run *models.Run) error
	UpdateStatus(ctx context.Context, runID string, status models.ExecutionStatus, outputs map[string]any, errMsg string) error
}

// ConditionEvaluator evaluates a router's condition expression against
// node output. No type in this repository implements it:
// builtin.RouterExecutor evaluates its route conditions itself.
type ConditionEvaluator interface {
	Evaluate(condition string, nodeOutput any) (bool, error)
}

// ExecutionNotifier receives execution and node lifecycle events for
// observers (logging, websocket broadcast) that sit outside the
// scheduler's own recorder/run-store responsibilities.
type ExecutionNotifier interface {
	Notify(ctx context.Context, event ExecutionEvent)
}

// EventType constants for execution/node lifecycle events. Scheduler
// emits node.started, node.completed, node.failed and node.paused; the
// execution.* and node.canceled types are defined for observers and
// filters but Scheduler does not emit them. The scheduler drives a
// dependency DAG, not fixed waves, so no wave or loop concepts appear
// here.
const (
	EventTypeExecutionStarted   = "execution.started"
	EventTypeExecutionCompleted = "execution.completed"
	EventTypeExecutionFailed    = "execution.failed"
	EventTypeExecutionPaused    = "execution.paused"
	EventTypeNodeStarted        = "node.started"
	EventTypeNodeCompleted      = "node.completed"
	EventTypeNodeFailed         = "node.failed"
	EventTypeNodeCanceled       = "node.canceled"
	EventTypeNodePaused         = "node.paused"
)
