package models

import "time"

// ExecutionStatus is the lifecycle status of a workflow run or a
// single node's execution within that run.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "PENDING"
	ExecutionStatusRunning   ExecutionStatus = "RUNNING"
	ExecutionStatusCompleted ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed    ExecutionStatus = "FAILED"
	ExecutionStatusPaused    ExecutionStatus = "PAUSED"
	ExecutionStatusCanceled  ExecutionStatus = "CANCELED"
)

// RunType distinguishes a top-level run from one hoisted into a
// parent's subworkflow invocation.
type RunType string

const (
	RunTypeWorkflow    RunType = "workflow"
	RunTypeSubworkflow RunType = "subworkflow"
)

// Run is a single execution of a workflow definition, recorded by a
// RunStore. ParentRunID is set only for subworkflow runs.
type Run struct {
	ID          string          `json:"id"`
	WorkflowID  string          `json:"workflow_id"`
	ParentRunID *string         `json:"parent_run_id,omitempty"`
	RunType     RunType         `json:"run_type"`
	Status      ExecutionStatus `json:"status"`
	Input       map[string]any  `json:"input,omitempty"`
	Outputs     map[string]any  `json:"outputs,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NodeExecution is the per-node record a TaskRecorder persists: one
// per (run, node) pair, at most once per node per run.
type NodeExecution struct {
	ID          string          `json:"id"`
	RunID       string          `json:"run_id"`
	NodeID      string          `json:"node_id"`
	Status      ExecutionStatus `json:"status"`
	Output      NodeOutput      `json:"output,omitempty"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
