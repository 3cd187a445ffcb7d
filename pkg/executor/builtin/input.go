package builtin

import (
	"context"

	"github.com/nodeflow/nodeflow/pkg/executor"
)

// InputExecutor is the InputNode implementation: it is never given a
// predecessor-assembled input by the scheduler (step 6 of the node
// execution protocol substitutes the run's initial_inputs instead),
// so Execute is a pure passthrough of whatever the scheduler hands it.
type InputExecutor struct {
	*executor.BaseExecutor
}

// NewInputExecutor creates an input node executor.
func NewInputExecutor() *InputExecutor {
	return &InputExecutor{
		BaseExecutor: executor.NewBaseExecutor("input"),
	}
}

func (e *InputExecutor) Execute(_ context.Context, _ map[string]any, input any) (any, error) {
	return input, nil
}
