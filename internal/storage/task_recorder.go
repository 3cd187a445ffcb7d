package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	stmodels "github.com/nodeflow/nodeflow/internal/storage/models"
	"github.com/nodeflow/nodeflow/pkg/engine"
)

// PostgresTaskRecorder is a Postgres-backed engine.TaskRecorder: one row per
// (run, node) pair.
type PostgresTaskRecorder struct {
	db *bun.DB
}

// NewTaskRecorder creates a TaskRecorder over db.
func NewTaskRecorder(db *bun.DB) *PostgresTaskRecorder {
	return &PostgresTaskRecorder{db: db}
}

// CreateTask inserts a pending node-execution row, ignoring a
// duplicate (run, node) pair so a retried scheduler step stays
// idempotent.
func (r *PostgresTaskRecorder) CreateTask(ctx context.Context, runID, nodeID string, initialMetadata map[string]any) error {
	existing := new(stmodels.NodeExecutionModel)
	err := r.db.NewSelect().
		Model(existing).
		Where("run_id = ? AND node_id = ?", runID, nodeID).
		Scan(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check existing task: %w", err)
	}

	row := &stmodels.NodeExecutionModel{
		RunID:     runID,
		NodeID:    nodeID,
		Status:    "PENDING",
		Input:     stmodels.JSONBMap(initialMetadata),
		StartedAt: time.Now(),
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask applies the set fields in a TaskUpdate to the (run,
// node) row, creating it first if the caller never called CreateTask.
func (r *PostgresTaskRecorder) UpdateTask(ctx context.Context, runID, nodeID string, fields engine.TaskUpdate) error {
	existing := new(stmodels.NodeExecutionModel)
	err := r.db.NewSelect().
		Model(existing).
		Where("run_id = ? AND node_id = ?", runID, nodeID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		existing = &stmodels.NodeExecutionModel{
			RunID:     runID,
			NodeID:    nodeID,
			Status:    "PENDING",
			StartedAt: time.Now(),
		}
		if _, insErr := r.db.NewInsert().Model(existing).Exec(ctx); insErr != nil {
			return fmt.Errorf("create task before update: %w", insErr)
		}
	} else if err != nil {
		return fmt.Errorf("load task for update: %w", err)
	}

	q := r.db.NewUpdate().Model((*stmodels.NodeExecutionModel)(nil)).
		Where("run_id = ? AND node_id = ?", runID, nodeID).
		Set("updated_at = ?", time.Now())

	if fields.Status != nil {
		q = q.Set("status = ?", string(*fields.Status))
	}
	if fields.Inputs != nil {
		q = q.Set("input = ?", stmodels.JSONBMap(fields.Inputs))
	}
	if fields.Outputs != nil {
		q = q.Set("output = ?", stmodels.JSONBMap(fields.Outputs))
	}
	if fields.Error != "" {
		q = q.Set("error = ?", fields.Error)
	}
	if fields.Subworkflow != nil {
		if m, ok := fields.Subworkflow.(map[string]any); ok {
			q = q.Set("subworkflow = ?", stmodels.JSONBMap(m))
		}
	}
	if fields.SubworkflowOutput != nil {
		if m, ok := fields.SubworkflowOutput.(map[string]any); ok {
			q = q.Set("subworkflow_output = ?", stmodels.JSONBMap(m))
		}
	}
	if fields.IsDownstreamOfPause {
		q = q.Set("is_downstream_of_pause = ?", true)
	}
	if fields.EndTime != nil && *fields.EndTime {
		q = q.Set("completed_at = ?", time.Now())
	}

	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Get returns a node execution's durable record, for inspection.
func (r *PostgresTaskRecorder) Get(ctx context.Context, runID, nodeID string) (*stmodels.NodeExecutionModel, error) {
	row := new(stmodels.NodeExecutionModel)
	err := r.db.NewSelect().
		Model(row).
		Where("run_id = ? AND node_id = ?", runID, nodeID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return row, nil
}
