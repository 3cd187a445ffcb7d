package models

import (
	"time"

	"github.com/uptrace/bun"
)

// NodeExecutionModel is the durable record of a single node's
// execution within a run: at most one row per (run, node) pair.
type NodeExecutionModel struct {
	bun.BaseModel `bun:"table:node_executions,alias:ne"`

	ID                  string     `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	RunID               string     `bun:"run_id,notnull,type:uuid" json:"run_id" validate:"required"`
	NodeID              string     `bun:"node_id,notnull" json:"node_id" validate:"required"`
	Status              string     `bun:"status,notnull,default:'PENDING'" json:"status" validate:"required,oneof=PENDING RUNNING COMPLETED FAILED PAUSED CANCELED"`
	Input               JSONBMap   `bun:"input,type:jsonb,default:'{}'" json:"input,omitempty"`
	Output              JSONBMap   `bun:"output,type:jsonb" json:"output,omitempty"`
	Error               string     `bun:"error" json:"error,omitempty"`
	Subworkflow         JSONBMap   `bun:"subworkflow,type:jsonb" json:"subworkflow,omitempty"`
	SubworkflowOutput   JSONBMap   `bun:"subworkflow_output,type:jsonb" json:"subworkflow_output,omitempty"`
	IsDownstreamOfPause bool       `bun:"is_downstream_of_pause,notnull,default:false" json:"is_downstream_of_pause"`
	StartedAt           time.Time  `bun:"started_at,notnull,default:current_timestamp" json:"started_at"`
	CompletedAt         *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
	CreatedAt           time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Run *RunModel `bun:"rel:belongs-to,join:run_id=id" json:"run,omitempty"`
}

// TableName returns the table name for NodeExecutionModel.
func (NodeExecutionModel) TableName() string {
	return "node_executions"
}

// BeforeInsert sets timestamps on insert.
func (ne *NodeExecutionModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	ne.CreatedAt = now
	ne.UpdatedAt = now
	if ne.StartedAt.IsZero() {
		ne.StartedAt = now
	}
	if ne.Input == nil {
		ne.Input = make(JSONBMap)
	}
	return nil
}

// BeforeUpdate refreshes the updated-at timestamp.
func (ne *NodeExecutionModel) BeforeUpdate(ctx interface{}) error {
	ne.UpdatedAt = time.Now()
	return nil
}

// IsTerminal reports whether the node execution reached a terminal status.
func (ne *NodeExecutionModel) IsTerminal() bool {
	return ne.Status == "COMPLETED" || ne.Status == "FAILED" || ne.Status == "CANCELED"
}
