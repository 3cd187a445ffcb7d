package builtin

import (
	"context"

	"github.com/nodeflow/nodeflow/pkg/executor"
)

// CoalesceExecutor is the CoalesceNode implementation. The scheduler
// already exempts CoalesceNode from null-predecessor cancellation and
// only passes the non-null subset of assembled inputs, so Execute is
// a pass-through identical in spirit to MergeExecutor's "all"
// strategy, kept as a distinct type since CoalesceNode is an
// engine-significant tag, not a generic node.
type CoalesceExecutor struct {
	*executor.BaseExecutor
}

// NewCoalesceExecutor creates a coalesce node executor.
func NewCoalesceExecutor() *CoalesceExecutor {
	return &CoalesceExecutor{
		BaseExecutor: executor.NewBaseExecutor("coalesce"),
	}
}

func (e *CoalesceExecutor) Execute(_ context.Context, _ map[string]any, input any) (any, error) {
	return input, nil
}
