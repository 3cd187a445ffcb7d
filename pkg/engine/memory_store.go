package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// InMemoryTaskRecorder is a TaskRecorder for standalone execution and
// tests: per-run, per-node records held in a guarded map, never
// persisted.
type InMemoryTaskRecorder struct {
	mu    sync.Mutex
	tasks map[string]map[string]*models.NodeExecution // runID -> nodeID -> record
}

// NewInMemoryTaskRecorder creates an empty in-memory task recorder.
func NewInMemoryTaskRecorder() *InMemoryTaskRecorder {
	return &InMemoryTaskRecorder{tasks: make(map[string]map[string]*models.NodeExecution)}
}

func (r *InMemoryTaskRecorder) CreateTask(_ context.Context, runID, nodeID string, _ map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tasks[runID] == nil {
		r.tasks[runID] = make(map[string]*models.NodeExecution)
	}
	if _, exists := r.tasks[runID][nodeID]; exists {
		return nil
	}
	r.tasks[runID][nodeID] = &models.NodeExecution{
		RunID:     runID,
		NodeID:    nodeID,
		Status:    models.ExecutionStatusPending,
		StartedAt: time.Now(),
	}
	return nil
}

func (r *InMemoryTaskRecorder) UpdateTask(_ context.Context, runID, nodeID string, fields TaskUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tasks[runID] == nil {
		r.tasks[runID] = make(map[string]*models.NodeExecution)
	}
	rec, ok := r.tasks[runID][nodeID]
	if !ok {
		rec = &models.NodeExecution{RunID: runID, NodeID: nodeID, StartedAt: time.Now()}
		r.tasks[runID][nodeID] = rec
	}
	if fields.Status != nil {
		rec.Status = *fields.Status
	}
	if fields.Outputs != nil {
		rec.Output = models.NodeOutput(fields.Outputs)
	}
	if fields.Error != "" {
		rec.Error = fields.Error
	}
	if fields.Status != nil && (*fields.Status == models.ExecutionStatusCompleted ||
		*fields.Status == models.ExecutionStatusFailed ||
		*fields.Status == models.ExecutionStatusCanceled) {
		now := time.Now()
		rec.CompletedAt = &now
	}
	return nil
}

// Get returns a recorded task's snapshot, for tests/inspection.
func (r *InMemoryTaskRecorder) Get(runID, nodeID string) (*models.NodeExecution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byNode, ok := r.tasks[runID]
	if !ok {
		return nil, false
	}
	rec, ok := byNode[nodeID]
	return rec, ok
}

// InMemoryRunStore is a RunStore for standalone execution and tests.
type InMemoryRunStore struct {
	mu   sync.Mutex
	runs map[string]*models.Run
}

// NewInMemoryRunStore creates an empty in-memory run store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{runs: make(map[string]*models.Run)}
}

// Put registers a run record, used by callers before starting a Run.
func (s *InMemoryRunStore) Put(run *models.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *InMemoryRunStore) GetRun(_ context.Context, runID string) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}

func (s *InMemoryRunStore) SetPaused(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		run = &models.Run{ID: runID, StartedAt: time.Now()}
		s.runs[runID] = run
	}
	run.Status = models.ExecutionStatusPaused
	return nil
}
