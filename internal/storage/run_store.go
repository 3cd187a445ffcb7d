package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/nodeflow/nodeflow/internal/storage/models"
	enginemodels "github.com/nodeflow/nodeflow/pkg/models"
)

// PostgresRunStore is a Postgres-backed engine.RunStore built on bun.
type PostgresRunStore struct {
	db *bun.DB
}

// NewRunStore creates a RunStore over db.
func NewRunStore(db *bun.DB) *PostgresRunStore {
	return &PostgresRunStore{db: db}
}

// Create inserts a new run record, generating its ID if unset.
func (s *PostgresRunStore) Create(ctx context.Context, run *enginemodels.Run) error {
	row := runToModel(run)
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	run.ID = row.ID
	return nil
}

// GetRun fetches a run by ID, translating it into the engine's
// domain model.
func (s *PostgresRunStore) GetRun(ctx context.Context, runID string) (*enginemodels.Run, error) {
	row := new(models.RunModel)
	err := s.db.NewSelect().Model(row).Where("id = ?", runID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run not found: %s", runID)
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	return modelToRun(row), nil
}

// SetPaused flips a run's status to PAUSED.
func (s *PostgresRunStore) SetPaused(ctx context.Context, runID string) error {
	_, err := s.db.NewUpdate().
		Model((*models.RunModel)(nil)).
		Set("status = ?", string(enginemodels.ExecutionStatusPaused)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", runID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set run paused: %w", err)
	}
	return nil
}

// UpdateStatus updates a run's terminal status, output, and error. If
// the new status is terminal, it also reconciles the run's node
// executions in the same transaction: any row left PENDING or RUNNING
// (a node the scheduler never reached, e.g. one outside a restricted
// NodeIDs set) is marked CANCELED so the durable record doesn't claim
// a node is still in flight after its run has ended.
func (s *PostgresRunStore) UpdateStatus(ctx context.Context, runID string, status enginemodels.ExecutionStatus, outputs map[string]any, errMsg string) error {
	now := time.Now()
	terminal := status == enginemodels.ExecutionStatusCompleted ||
		status == enginemodels.ExecutionStatusFailed ||
		status == enginemodels.ExecutionStatusCanceled

	return WithTransaction(ctx, s.db, func(tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*models.RunModel)(nil)).
			Set("status = ?", string(status)).
			Set("updated_at = ?", now).
			Where("id = ?", runID)

		if outputs != nil {
			q = q.Set("outputs = ?", models.JSONBMap(outputs))
		}
		if errMsg != "" {
			q = q.Set("error = ?", errMsg)
		}
		if terminal {
			q = q.Set("completed_at = ?", now)
		}

		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("update run status: %w", err)
		}

		if terminal {
			_, err := tx.NewUpdate().
				Model((*models.NodeExecutionModel)(nil)).
				Set("status = ?", "CANCELED").
				Set("completed_at = ?", now).
				Set("updated_at = ?", now).
				Where("run_id = ? AND status IN (?)", runID, bun.In([]string{"PENDING", "RUNNING"})).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("reconcile node executions: %w", err)
			}
		}

		return nil
	})
}

func runToModel(run *enginemodels.Run) *models.RunModel {
	runType := string(run.RunType)
	if runType == "" {
		runType = string(enginemodels.RunTypeWorkflow)
	}
	status := string(run.Status)
	if status == "" {
		status = string(enginemodels.ExecutionStatusPending)
	}
	return &models.RunModel{
		ID:          run.ID,
		WorkflowID:  run.WorkflowID,
		ParentRunID: run.ParentRunID,
		RunType:     runType,
		Status:      status,
		Input:       models.JSONBMap(run.Input),
		Outputs:     models.JSONBMap(run.Outputs),
		Error:       run.Error,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
}

func modelToRun(row *models.RunModel) *enginemodels.Run {
	return &enginemodels.Run{
		ID:          row.ID,
		WorkflowID:  row.WorkflowID,
		ParentRunID: row.ParentRunID,
		RunType:     enginemodels.RunType(row.RunType),
		Status:      enginemodels.ExecutionStatus(row.Status),
		Input:       row.Input,
		Outputs:     row.Outputs,
		Error:       row.Error,
		StartedAt:   row.StartedAt,
		CompletedAt: row.CompletedAt,
	}
}
