// Package executor defines the node factory: the registry that
// resolves a node type name to an Executor instance capable of
// running it.
package executor

import (
	"context"
	"fmt"
)

// Executor is a node implementation: given resolved config and the
// assembled predecessor input, produce an output (or a cooperative
// Pause, surfaced by returning a *models.PauseSignal error, as
// builtin.HumanInterventionExecutor does).
type Executor interface {
	Execute(ctx context.Context, config map[string]any, input any) (any, error)

	// Validate checks config shape without running the node. Used both
	// for normal pre-flight checks and for the schema-only validation
	// path the scheduler takes on precomputed outputs.
	Validate(config map[string]any) error
}

// Manager resolves a node type name to its Executor. Unknown types
// must fail loudly rather than resolve to some default.
type Manager interface {
	Get(nodeType string) (Executor, error)
	Register(nodeType string, ex Executor)
}

// Registry is the default in-memory Manager implementation: a plain
// map guarded by the fact that registration only ever happens at
// startup, before any concurrent Get calls.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register adds or replaces the executor for a node type.
func (r *Registry) Register(nodeType string, ex Executor) {
	r.executors[nodeType] = ex
}

// Get resolves a node type to its executor.
func (r *Registry) Get(nodeType string) (Executor, error) {
	ex, ok := r.executors[nodeType]
	if !ok {
		return nil, fmt.Errorf("executor: unknown node type %q", nodeType)
	}
	return ex, nil
}
