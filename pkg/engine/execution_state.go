package engine

import (
	"sync"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// ExecutionState is the scheduler's per-run mutable state. It is
// dependency-driven: the scheduler advances each node as its
// predecessors complete rather than in lockstep waves.
type ExecutionState struct {
	RunID      string
	Workflow   *models.Workflow
	Input      map[string]any
	Variables  map[string]any

	mu sync.Mutex

	nodeDict          map[string]*models.Node
	dependencies      map[string]map[string]struct{}
	successors        map[string]map[string]struct{}
	linksByTarget     map[string][]*models.Link
	outputs           map[string]models.NodeOutput
	outputSet         map[string]struct{} // ids with a written (possibly-nil) output, for memoization
	failedNodes       map[string]struct{}
	nodeTasks         map[string]*nodeTask
	initialInputs     map[string]map[string]any
	downstreamOfPause map[string]struct{}
	pausedNodeID      string
}

// nodeTask is the at-most-once execution handle for a single node,
// created lazily on first need and shared by every concurrent caller
// that reaches the same node through different dependency paths.
type nodeTask struct {
	done   chan struct{}
	output models.NodeOutput
	err    error
}

// NewExecutionState builds scheduler state from a loaded (hoisted,
// validated) workflow and a dependency map built from its links.
func NewExecutionState(runID string, wf *models.Workflow, dependencies map[string]map[string]struct{}, input map[string]any) *ExecutionState {
	nodeDict := make(map[string]*models.Node, len(wf.Nodes))
	for _, n := range wf.Nodes {
		nodeDict[n.ID] = n
	}

	initialInputs := make(map[string]map[string]any)
	for _, n := range wf.Nodes {
		if n.Type == models.NodeTypeInput {
			initialInputs[n.ID] = input
		}
	}

	successors := make(map[string]map[string]struct{}, len(nodeDict))
	for id := range nodeDict {
		successors[id] = make(map[string]struct{})
	}
	for id, preds := range dependencies {
		for p := range preds {
			if successors[p] == nil {
				successors[p] = make(map[string]struct{})
			}
			successors[p][id] = struct{}{}
		}
	}

	linksByTarget := make(map[string][]*models.Link)
	for _, l := range wf.Links {
		linksByTarget[l.TargetID] = append(linksByTarget[l.TargetID], l)
	}

	return &ExecutionState{
		RunID:             runID,
		Workflow:          wf,
		Input:             input,
		Variables:         wf.Variables,
		nodeDict:          nodeDict,
		dependencies:      dependencies,
		successors:        successors,
		linksByTarget:     linksByTarget,
		outputs:           make(map[string]models.NodeOutput),
		outputSet:         make(map[string]struct{}),
		failedNodes:       make(map[string]struct{}),
		nodeTasks:         make(map[string]*nodeTask),
		initialInputs:     initialInputs,
		downstreamOfPause: make(map[string]struct{}),
	}
}

// Node looks up a node by id.
func (s *ExecutionState) Node(id string) (*models.Node, bool) {
	n, ok := s.nodeDict[id]
	return n, ok
}

// Dependencies returns the predecessor id set for a node. Never nil.
func (s *ExecutionState) Dependencies(id string) map[string]struct{} {
	return s.dependencies[id]
}

// HasOutput reports whether id's output has already been written this
// run. Output writes are write-once: null or a value, never replaced.
func (s *ExecutionState) HasOutput(id string) (models.NodeOutput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, written := s.outputSet[id]
	return s.outputs[id], written
}

// SetOutput records id's terminal output. A nil output represents
// "canceled / not-taken route / not yet run".
func (s *ExecutionState) SetOutput(id string, out models.NodeOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[id] = out
	s.outputSet[id] = struct{}{}
}

// MarkFailed adds id to the monotonically-growing failed set and
// reports whether it was newly added.
func (s *ExecutionState) MarkFailed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.failedNodes[id]; ok {
		return false
	}
	s.failedNodes[id] = struct{}{}
	return true
}

// Failed reports whether id is in the failed set.
func (s *ExecutionState) Failed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.failedNodes[id]
	return ok
}

// MarkDownstreamOfPause records id as gated behind a pause rather than
// failed, so the driver sweep can distinguish the two outcomes.
func (s *ExecutionState) MarkDownstreamOfPause(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downstreamOfPause[id] = struct{}{}
}

// IsDownstreamOfPause reports whether id was gated behind a pause.
func (s *ExecutionState) IsDownstreamOfPause(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.downstreamOfPause[id]
	return ok
}

// taskFor returns the execution handle for id, creating it at most
// once under an explicit lock so concurrent goroutines reaching the
// same node never run it twice.
func (s *ExecutionState) taskFor(id string) (*nodeTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.nodeTasks[id]; ok {
		return t, false
	}
	t := &nodeTask{done: make(chan struct{})}
	s.nodeTasks[id] = t
	return t, true
}

// SeedCompleted pre-populates a node's task and output, used for
// precomputed_outputs entries that pass schema validation: the node
// factory is never invoked for these beyond the validation call.
func (s *ExecutionState) SeedCompleted(id string, output models.NodeOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodeTasks[id]; !ok {
		t := &nodeTask{done: make(chan struct{}), output: output}
		close(t.done)
		s.nodeTasks[id] = t
	}
	s.outputs[id] = output
	s.outputSet[id] = struct{}{}
}

// LinksInto returns the links whose target is id.
func (s *ExecutionState) LinksInto(id string) []*models.Link {
	return s.linksByTarget[id]
}

// SetPausedNode records the first node id observed to pause this run.
// Ties under concurrency resolve to whichever goroutine wins the lock.
func (s *ExecutionState) SetPausedNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pausedNodeID == "" {
		s.pausedNodeID = id
	}
}

// PausedNodeID returns the first paused node id, or "" if none.
func (s *ExecutionState) PausedNodeID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pausedNodeID
}

// IsDownstreamOf reports whether id is reachable from ancestorID by
// following successor edges forward, via a full BFS rather than a
// single-predecessor walk.
func (s *ExecutionState) IsDownstreamOf(id, ancestorID string) bool {
	if id == ancestorID {
		return false
	}
	visited := make(map[string]struct{})
	queue := []string{ancestorID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		for succ := range s.successors[cur] {
			if succ == id {
				return true
			}
			queue = append(queue, succ)
		}
	}
	return false
}

// UnmarkFailed removes id from the failed set, used when the driver
// sweep reclassifies a null-propagation failure as downstream-of-pause
// instead.
func (s *ExecutionState) UnmarkFailed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failedNodes, id)
}

// InitialInput returns the seed input for an InputNode.
func (s *ExecutionState) InitialInput(id string) (map[string]any, bool) {
	v, ok := s.initialInputs[id]
	return v, ok
}

// AllNodeIDs returns every node id known to this run, in declaration
// order. This only affects reporting order.
func (s *ExecutionState) AllNodeIDs() []string {
	ids := make([]string, 0, len(s.Workflow.Nodes))
	for _, n := range s.Workflow.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
