// Package sdk wires a Scheduler, executor registry, run store, task
// recorder, and observer fanout into one Client, the entry point
// embedding callers (and cmd/nodeflow) use instead of assembling
// pkg/engine's pieces by hand.
package sdk

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/nodeflow/nodeflow/internal/config"
	"github.com/nodeflow/nodeflow/internal/observer"
	"github.com/nodeflow/nodeflow/internal/storage"
	"github.com/nodeflow/nodeflow/pkg/engine"
	"github.com/nodeflow/nodeflow/pkg/executor"
	"github.com/nodeflow/nodeflow/pkg/executor/builtin"
	"github.com/nodeflow/nodeflow/pkg/models"
)

// Client is the single entry point for loading and running workflows.
type Client struct {
	manager   executor.Manager
	recorder  engine.TaskRecorder
	runStore  engine.RunStore
	observers *observer.ObserverManager
	scheduler *engine.Scheduler
	log       *slog.Logger

	db *bun.DB
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	db       *bun.DB
	logger   *slog.Logger
	cfg      *config.Config
	recorder engine.TaskRecorder
	runStore engine.RunStore
}

// WithDB wires a Postgres-backed run store and task recorder over db,
// overriding the in-memory default.
func WithDB(db *bun.DB) Option {
	return func(o *clientOptions) { o.db = db }
}

// WithLogger sets the base logger used by the scheduler, observer
// manager, and logger observer.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithConfig supplies a loaded config.Config controlling which
// built-in observers the client registers.
func WithConfig(cfg *config.Config) Option {
	return func(o *clientOptions) { o.cfg = cfg }
}

// WithTaskRecorder overrides the task recorder outright (e.g. a test
// double), taking precedence over WithDB.
func WithTaskRecorder(r engine.TaskRecorder) Option {
	return func(o *clientOptions) { o.recorder = r }
}

// WithRunStore overrides the run store outright, taking precedence
// over WithDB.
func WithRunStore(s engine.RunStore) Option {
	return func(o *clientOptions) { o.runStore = s }
}

// New builds a Client with every built-in executor registered and,
// unless overridden, in-memory run/task storage and a logger observer.
func New(opts ...Option) *Client {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	log := o.logger
	if log == nil {
		log = slog.Default()
	}

	manager := executor.NewRegistry()
	builtin.RegisterAll(manager)

	recorder := o.recorder
	runStore := o.runStore

	var db *bun.DB
	if o.db != nil {
		db = o.db
		if recorder == nil {
			recorder = storage.NewTaskRecorder(db)
		}
		if runStore == nil {
			runStore = storage.NewRunStore(db)
		}
	}
	if recorder == nil {
		recorder = engine.NewInMemoryTaskRecorder()
	}
	if runStore == nil {
		runStore = engine.NewInMemoryRunStore()
	}

	observers := observer.NewObserverManager(observer.WithLogger(log))

	enableLogger := true
	if o.cfg != nil {
		enableLogger = o.cfg.Observer.EnableLogger
	}
	if enableLogger {
		_ = observers.Register(observer.NewLoggerObserver(observer.WithLoggerInstance(log)))
	}

	sched := engine.NewScheduler(manager, recorder, runStore, observers, log)

	return &Client{
		manager:   manager,
		recorder:  recorder,
		runStore:  runStore,
		observers: observers,
		scheduler: sched,
		log:       log,
		db:        db,
	}
}

// Manager exposes the underlying executor registry, for callers
// registering additional node-type executors before running.
func (c *Client) Manager() executor.Manager {
	return c.manager
}

// Observers exposes the observer manager, for registering additional
// sinks (e.g. a websocket observer bound to an HTTP server).
func (c *Client) Observers() *observer.ObserverManager {
	return c.observers
}

// Health pings the underlying database, if one is configured, and
// reports its connection pool stats. ok is false when the client has
// no database, i.e. it is running against in-memory storage.
func (c *Client) Health(ctx context.Context) (stats sql.DBStats, ok bool, err error) {
	if c.db == nil {
		return sql.DBStats{}, false, nil
	}
	return storage.Stats(c.db), true, storage.Ping(ctx, c.db)
}

// LoadWorkflowJSON parses and validates a workflow definition from
// raw JSON, returning the hoisted, reachability-checked graph ready
// to run.
func (c *Client) LoadWorkflowJSON(data []byte) (*models.Workflow, error) {
	var wf models.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	if err := wf.Validate(); err != nil {
		return nil, fmt.Errorf("validate workflow: %w", err)
	}
	return engine.LoadWorkflow(&wf)
}

// Execute runs a loaded workflow to completion or its first pause,
// generating a run ID. See engine.Scheduler.Run for the return
// contract on pause/failure.
func (c *Client) Execute(ctx context.Context, wf *models.Workflow, input map[string]any) (string, map[string]models.NodeOutput, error) {
	runID := uuid.New().String()
	outputs, err := c.ExecuteRun(ctx, wf, runID, input, nil)
	return runID, outputs, err
}

// ExecuteRun runs a loaded workflow under a caller-supplied run ID,
// for resuming a previously paused run or correlating external state.
// When the configured run store also implements engine.RunRecorder
// (as storage.PostgresRunStore does), ExecuteRun creates the run row
// up front and records its terminal status once the run stops; a
// pause is left for the scheduler's own SetPaused call.
func (c *Client) ExecuteRun(ctx context.Context, wf *models.Workflow, runID string, input map[string]any, opts *engine.RunOptions) (map[string]models.NodeOutput, error) {
	recorder, ok := c.runStore.(engine.RunRecorder)
	if ok {
		run := &models.Run{
			ID:        runID,
			RunType:   models.RunTypeWorkflow,
			Status:    models.ExecutionStatusRunning,
			Input:     input,
			StartedAt: time.Now(),
		}
		if wf != nil {
			run.WorkflowID = wf.ID
		}
		if err := recorder.Create(ctx, run); err != nil {
			c.log.Warn("failed to create run record", "run_id", runID, "error", err)
			ok = false
		}
	}

	outputs, err := c.scheduler.Run(ctx, wf, runID, input, opts)

	if ok {
		var pause *models.PauseSignal
		if !errors.As(err, &pause) {
			status := models.ExecutionStatusCompleted
			errMsg := ""
			if err != nil {
				status = models.ExecutionStatusFailed
				errMsg = err.Error()
			}
			if updErr := recorder.UpdateStatus(ctx, runID, status, engine.Serialize(outputs).(map[string]any), errMsg); updErr != nil {
				c.log.Warn("failed to update run status", "run_id", runID, "error", updErr)
			}
		}
	}

	return outputs, err
}

// RunBatch executes wf once per element of inputs with bounded
// concurrency, generating a run ID per input.
func (c *Client) RunBatch(ctx context.Context, wf *models.Workflow, inputs []map[string]any, batchSize int) []*engine.RunResult {
	return c.scheduler.RunBatch(ctx, wf, func(int) string { return uuid.New().String() }, inputs, batchSize)
}
