package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RunModel is the durable record of a single workflow execution.
type RunModel struct {
	bun.BaseModel `bun:"table:runs,alias:r"`

	ID          string     `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	WorkflowID  string     `bun:"workflow_id,notnull,type:uuid" json:"workflow_id" validate:"required"`
	ParentRunID *string    `bun:"parent_run_id,type:uuid" json:"parent_run_id,omitempty"`
	RunType     string     `bun:"run_type,notnull,default:'workflow'" json:"run_type" validate:"required,oneof=workflow subworkflow"`
	Status      string     `bun:"status,notnull,default:'PENDING'" json:"status" validate:"required,oneof=PENDING RUNNING COMPLETED FAILED PAUSED CANCELED"`
	Input       JSONBMap   `bun:"input,type:jsonb,default:'{}'" json:"input,omitempty"`
	Outputs     JSONBMap   `bun:"outputs,type:jsonb" json:"outputs,omitempty"`
	Error       string     `bun:"error" json:"error,omitempty"`
	StartedAt   time.Time  `bun:"started_at,notnull,default:current_timestamp" json:"started_at"`
	CompletedAt *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	NodeExecutions []*NodeExecutionModel `bun:"rel:has-many,join:id=run_id" json:"node_executions,omitempty"`
}

// TableName returns the table name for RunModel.
func (RunModel) TableName() string {
	return "runs"
}

// BeforeInsert sets timestamps and defaults on insert.
func (r *RunModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.StartedAt.IsZero() {
		r.StartedAt = now
	}
	if r.Input == nil {
		r.Input = make(JSONBMap)
	}
	return nil
}

// BeforeUpdate refreshes the updated-at timestamp.
func (r *RunModel) BeforeUpdate(ctx interface{}) error {
	r.UpdatedAt = time.Now()
	return nil
}

// IsTerminal reports whether the run has reached a terminal status.
func (r *RunModel) IsTerminal() bool {
	return r.Status == "COMPLETED" || r.Status == "FAILED" || r.Status == "CANCELED"
}

// MarkPaused sets the run's status to PAUSED.
func (r *RunModel) MarkPaused() {
	r.Status = "PAUSED"
}
