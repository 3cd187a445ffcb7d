package builtin

import (
	"context"

	"github.com/nodeflow/nodeflow/pkg/executor"
)

// OutputExecutor is the OutputNode implementation: a terminal
// passthrough that exists so the scheduler has a node to record as
// the run's result surface. Optionally remaps input keys via
// config["field_map"] (old key -> new key).
type OutputExecutor struct {
	*executor.BaseExecutor
}

// NewOutputExecutor creates an output node executor.
func NewOutputExecutor() *OutputExecutor {
	return &OutputExecutor{
		BaseExecutor: executor.NewBaseExecutor("output"),
	}
}

func (e *OutputExecutor) Execute(_ context.Context, config map[string]any, input any) (any, error) {
	fieldMap, ok := config["field_map"].(map[string]any)
	if !ok {
		return input, nil
	}
	inputMap, ok := input.(map[string]any)
	if !ok {
		return input, nil
	}
	remapped := make(map[string]any, len(inputMap))
	for k, v := range inputMap {
		if newKey, ok := fieldMap[k].(string); ok {
			remapped[newKey] = v
		} else {
			remapped[k] = v
		}
	}
	return remapped, nil
}
