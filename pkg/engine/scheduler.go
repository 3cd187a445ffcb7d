package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nodeflow/nodeflow/pkg/executor"
	"github.com/nodeflow/nodeflow/pkg/models"
)

// Scheduler drives concurrent per-node execution of a loaded workflow:
// one goroutine per node, memoized outputs, upstream-failure and
// pause propagation, router/coalesce semantics. SPEC_FULL.md §4.E
// lists the full per-node protocol.
type Scheduler struct {
	manager  executor.Manager
	recorder TaskRecorder
	runStore RunStore
	notifier ExecutionNotifier
	log      *slog.Logger
}

// NewScheduler builds a Scheduler. notifier may be NewNoOpNotifier()
// for standalone execution with no observers.
func NewScheduler(manager executor.Manager, recorder TaskRecorder, runStore RunStore, notifier ExecutionNotifier, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{manager: manager, recorder: recorder, runStore: runStore, notifier: notifier, log: log}
}

// RunOptions restricts and seeds a Run.
type RunOptions struct {
	// NodeIDs, if non-empty, restricts execution to this set; their
	// transitive predecessors must be InputNodes, in the set, or
	// present in PrecomputedOutputs (checked up front, §4.A).
	NodeIDs []string

	// PrecomputedOutputs supplies already-known outputs. Each entry is
	// schema-validated via the node factory before being accepted;
	// a validation failure is logged and the entry is skipped, not
	// fatal.
	PrecomputedOutputs map[string]models.NodeOutput
}

// BuildDependencies derives the predecessor-id-set map from a loaded
// workflow's links.
func BuildDependencies(wf *models.Workflow) map[string]map[string]struct{} {
	deps := make(map[string]map[string]struct{}, len(wf.Nodes))
	for _, n := range wf.Nodes {
		deps[n.ID] = make(map[string]struct{})
	}
	for _, l := range wf.Links {
		if deps[l.TargetID] == nil {
			deps[l.TargetID] = make(map[string]struct{})
		}
		deps[l.TargetID][l.SourceID] = struct{}{}
	}
	return deps
}

// Run loads wf, executes it to completion (or to its first pause),
// and returns every non-null output reached. On pause, it returns the
// partial output map together with a *models.PauseSignal error
// (check with errors.As); on any other unrecovered error with no
// pause observed, it returns the partial map and that error.
func (s *Scheduler) Run(ctx context.Context, wf *models.Workflow, runID string, input map[string]any, opts *RunOptions) (map[string]models.NodeOutput, error) {
	if opts == nil {
		opts = &RunOptions{}
	}

	loaded, err := LoadWorkflow(wf)
	if err != nil {
		return nil, err
	}

	deps := BuildDependencies(loaded)

	if len(opts.NodeIDs) > 0 {
		if err := ValidateReachability(loaded, deps, opts.NodeIDs, opts.PrecomputedOutputs); err != nil {
			return nil, err
		}
	}

	state := NewExecutionState(runID, loaded, deps, input)

	for id, out := range opts.PrecomputedOutputs {
		node, ok := state.Node(id)
		if !ok {
			s.log.Warn("precomputed output for unknown node, skipping", "node_id", id)
			continue
		}
		ex, err := s.manager.Get(string(node.Type))
		if err != nil {
			s.log.Warn("precomputed output: no executor for node type, skipping", "node_id", id, "node_type", node.Type)
			continue
		}
		if err := ex.Validate(node.Config); err != nil {
			s.log.Warn("precomputed output failed schema validation, skipping", "node_id", id, "error", err)
			continue
		}
		state.SeedCompleted(id, out)
	}

	nodesToRun := make([]string, 0, len(loaded.Nodes))
	if len(opts.NodeIDs) > 0 {
		nodesToRun = append(nodesToRun, opts.NodeIDs...)
	} else {
		for _, n := range loaded.Nodes {
			nodesToRun = append(nodesToRun, n.ID)
		}
	}

	type nodeResult struct {
		id  string
		out models.NodeOutput
		err error
	}
	results := make([]nodeResult, len(nodesToRun))

	var wg sync.WaitGroup
	for i, id := range nodesToRun {
		wg.Add(1)
		go func(idx int, nid string) {
			defer wg.Done()
			out, err := s.execNode(ctx, state, nid)
			results[idx] = nodeResult{id: nid, out: out, err: err}
		}(i, id)
	}
	wg.Wait()

	pausedNodeID := state.PausedNodeID()

	if pausedNodeID != "" {
		// Reclassify any node downstream of the pause whose error came
		// from null/upstream-failure propagation rather than a genuine
		// node failure.
		for _, r := range results {
			if r.err == nil {
				continue
			}
			var nf *NodeFailureError
			if errors.As(r.err, &nf) {
				continue // genuine failures are never downgraded
			}
			if state.IsDownstreamOf(r.id, pausedNodeID) && state.Failed(r.id) {
				state.UnmarkFailed(r.id)
				state.MarkDownstreamOfPause(r.id)
				_ = s.recorder.UpdateTask(ctx, runID, r.id, TaskUpdate{
					Status:              statusPtr(models.ExecutionStatusPending),
					IsDownstreamOfPause: true,
				})
			}
		}
	}

	out := collectOutputs(state)

	if pausedNodeID != "" {
		if err := s.runStore.SetPaused(ctx, runID); err != nil {
			s.log.Warn("failed to mark run paused", "run_id", runID, "error", err)
		}
		return out, models.NewPauseSignal(pausedNodeID, nil)
	}

	for _, r := range results {
		if r.err != nil {
			return out, r.err
		}
	}

	return out, nil
}

func collectOutputs(state *ExecutionState) map[string]models.NodeOutput {
	out := make(map[string]models.NodeOutput)
	for _, id := range state.AllNodeIDs() {
		v, written := state.HasOutput(id)
		if written && v != nil {
			out[id] = v
		}
	}
	return out
}

func statusPtr(s models.ExecutionStatus) *models.ExecutionStatus { return &s }

// execNode is the at-most-once execution handle lookup: it creates
// the node's task on first reference and runs the protocol exactly
// once, or waits for an in-flight/completed task otherwise.
func (s *Scheduler) execNode(ctx context.Context, state *ExecutionState, id string) (models.NodeOutput, error) {
	task, isOwner := state.taskFor(id)
	if !isOwner {
		<-task.done
		return task.output, task.err
	}

	out, err := s.runNode(ctx, state, id)
	task.output = out
	task.err = err
	state.SetOutput(id, out)
	close(task.done)
	return out, err
}

// runNode runs a single node after memoization (handled by execNode's
// task lookup): it awaits predecessors, gates on upstream failure,
// assembles input, and invokes the node's executor.
func (s *Scheduler) runNode(ctx context.Context, state *ExecutionState, id string) (models.NodeOutput, error) {
	node, ok := state.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: node %s not found", ErrInvalidGraph, id)
	}

	// Step 2: await predecessors in parallel.
	preds := state.Dependencies(id)
	type predResult struct {
		id  string
		out models.NodeOutput
		err error
	}
	predResults := make([]predResult, 0, len(preds))
	if len(preds) > 0 {
		var wg sync.WaitGroup
		ch := make(chan predResult, len(preds))
		for p := range preds {
			wg.Add(1)
			go func(pid string) {
				defer wg.Done()
				out, err := s.execNode(ctx, state, pid)
				ch <- predResult{pid, out, err}
			}(p)
		}
		wg.Wait()
		close(ch)
		for r := range ch {
			predResults = append(predResults, r)
		}

		// Upstream failure gating: any predecessor error, whether its
		// own upstream failure or a genuine node failure surfaced
		// through the shared task, fails this node too, recorded as
		// CANCELED with "Upstream failure".
		for _, r := range predResults {
			if r.err != nil {
				state.MarkFailed(id)
				s.recordCanceled(ctx, state, id, "Upstream failure")
				return nil, NewUpstreamFailure(id, "upstream failure")
			}
		}

		// Step 3: pause gating.
		for _, r := range predResults {
			if models.BlocksNode(r.out, id) {
				state.MarkDownstreamOfPause(id)
				_ = s.recorder.UpdateTask(ctx, state.RunID, id, TaskUpdate{
					Status:              statusPtr(models.ExecutionStatusPending),
					IsDownstreamOfPause: true,
				})
				return nil, nil
			}
		}
	}

	// Steps 5 & 6: null gating (coalesce-exempt) and input assembly.
	isCoalesce := node.Type == models.NodeTypeCoalesce
	inputMap := make(map[string]any)
	anyNull := false

	if node.Type == models.NodeTypeInput {
		seed, _ := state.InitialInput(id)
		for k, v := range seed {
			inputMap[k] = v
		}
	} else {
		for _, link := range state.LinksInto(id) {
			var srcOut models.NodeOutput
			found := false
			for _, r := range predResults {
				if r.id == link.SourceID {
					srcOut = r.out
					found = true
					break
				}
			}
			if !found {
				continue
			}

			var val any
			if handles, ok := models.AsRouterOutput(srcOut); ok {
				val = handles[link.SourceHandle]
			} else {
				val = srcOut
			}

			if val == nil {
				anyNull = true
				continue
			}
			inputMap[link.SourceID] = val
		}

		if anyNull && !isCoalesce {
			s.recordCanceled(ctx, state, id, "")
			return nil, nil
		}
	}

	// Step 7: empty-input check.
	if node.Type != models.NodeTypeInput && len(inputMap) == 0 {
		_ = s.recorder.UpdateTask(ctx, state.RunID, id, TaskUpdate{
			Status: statusPtr(models.ExecutionStatusFailed),
			Error:  ErrUnconnectedNode.Error(),
		})
		return nil, fmt.Errorf("%w: node %s", ErrUnconnectedNode, id)
	}

	// Step 8: instantiate via the node factory.
	ex, err := s.manager.Get(string(node.Type))
	if err != nil {
		state.MarkFailed(id)
		s.recordFailed(ctx, state, id, err)
		return nil, NewNodeFailure(id, err)
	}

	// Step 9: invoke.
	startedAt := time.Now()
	_ = s.recorder.CreateTask(ctx, state.RunID, id, map[string]any{"node_type": string(node.Type)})
	_ = s.recorder.UpdateTask(ctx, state.RunID, id, TaskUpdate{Status: statusPtr(models.ExecutionStatusRunning)})
	s.notify(ctx, state, id, node, EventTypeNodeStarted, nil, nil)

	cfg := make(map[string]any, len(node.Config)+1)
	for k, v := range node.Config {
		cfg[k] = v
	}
	cfg["node_id"] = id

	raw, invokeErr := ex.Execute(ctx, cfg, inputMap)

	if invokeErr != nil {
		var pause *models.PauseSignal
		if errors.As(invokeErr, &pause) {
			if pause.NodeID == "" {
				pause.NodeID = id
			}
			state.SetPausedNode(pause.NodeID)
			_ = s.recorder.UpdateTask(ctx, state.RunID, id, TaskUpdate{
				Status:  statusPtr(models.ExecutionStatusPaused),
				Outputs: map[string]any(pause.Output),
			})
			if err := s.runStore.SetPaused(ctx, state.RunID); err != nil {
				s.log.Warn("failed to mark run paused", "run_id", state.RunID, "error", err)
			}
			s.notify(ctx, state, id, node, EventTypeNodePaused, pause.Output, nil)
			// Pause is a cooperative signal, not a failure: the node's
			// own task returns normally with its partial output.
			return pause.Output, nil
		}

		state.MarkFailed(id)
		s.recordFailed(ctx, state, id, invokeErr)
		s.notify(ctx, state, id, node, EventTypeNodeFailed, nil, invokeErr)
		return nil, NewNodeFailure(id, invokeErr)
	}

	output := coerceOutput(raw)
	durationMs := time.Since(startedAt).Milliseconds()

	subworkflow, _ := node.SubworkflowConfig()
	serialized, _ := Serialize(output).(map[string]any)
	_ = s.recorder.UpdateTask(ctx, state.RunID, id, TaskUpdate{
		Status:      statusPtr(models.ExecutionStatusCompleted),
		Outputs:     serialized,
		Subworkflow: subworkflow,
	})
	s.notify(ctx, state, id, node, EventTypeNodeCompleted, output, nil)
	_ = durationMs

	return output, nil
}

// coerceOutput normalizes whatever an Executor returned into a
// models.NodeOutput.
func coerceOutput(raw any) models.NodeOutput {
	switch v := raw.(type) {
	case models.NodeOutput:
		return v
	case map[string]any:
		return models.NodeOutput(v)
	case nil:
		return nil
	default:
		return models.NodeOutput{"value": v}
	}
}

func (s *Scheduler) recordCanceled(ctx context.Context, state *ExecutionState, id, errMsg string) {
	fields := TaskUpdate{Status: statusPtr(models.ExecutionStatusCanceled)}
	if errMsg != "" {
		fields.Error = errMsg
	}
	_ = s.recorder.UpdateTask(ctx, state.RunID, id, fields)
}

func (s *Scheduler) recordFailed(ctx context.Context, state *ExecutionState, id string, err error) {
	_ = s.recorder.UpdateTask(ctx, state.RunID, id, TaskUpdate{
		Status: statusPtr(models.ExecutionStatusFailed),
		Error:  truncate(err.Error(), 2000),
	})
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func (s *Scheduler) notify(ctx context.Context, state *ExecutionState, id string, node *models.Node, eventType string, output any, err error) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, ExecutionEvent{
		Type:       eventType,
		RunID:      state.RunID,
		WorkflowID: state.Workflow.ID,
		NodeID:     id,
		NodeTitle:  node.Title,
		NodeType:   string(node.Type),
		Output:     output,
		Error:      err,
		Timestamp:  time.Now(),
	})
}
