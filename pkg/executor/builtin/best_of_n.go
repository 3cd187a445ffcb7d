package builtin

import (
	"context"
	"fmt"

	"github.com/nodeflow/nodeflow/pkg/executor"
)

// Selector picks the index of the winning sample from a slice of
// per-sample outputs. The default, FirstSuccessful, returns the index
// of the first non-nil sample.
type Selector func(samples []any) int

// FirstSuccessful selects the first non-nil sample, or -1 if every
// sample is nil.
func FirstSuccessful(samples []any) int {
	for i, s := range samples {
		if s != nil {
			return i
		}
	}
	return -1
}

// BestOfNExecutor is the BestOfNNode implementation: it invokes an
// inner executor N times against the same input and selects one
// sample via Selector. "Best" is pluggable and defaults to
// first-successful since the engine core has no opinion on scoring.
type BestOfNExecutor struct {
	*executor.BaseExecutor
	manager  executor.Manager
	Selector Selector
}

// NewBestOfNExecutor creates a best-of-N executor that samples
// whatever inner node type config["inner_node_type"] names, resolved
// through manager.
func NewBestOfNExecutor(manager executor.Manager) *BestOfNExecutor {
	return &BestOfNExecutor{
		BaseExecutor: executor.NewBaseExecutor("best_of_n"),
		manager:      manager,
		Selector:     FirstSuccessful,
	}
}

func (e *BestOfNExecutor) Validate(config map[string]any) error {
	innerType := e.GetStringDefault(config, "inner_node_type", "")
	if innerType == "" {
		return fmt.Errorf("best_of_n: config.inner_node_type is required")
	}
	if _, err := e.manager.Get(innerType); err != nil {
		return fmt.Errorf("best_of_n: %w", err)
	}
	return nil
}

func (e *BestOfNExecutor) Execute(ctx context.Context, config map[string]any, input any) (any, error) {
	innerType := e.GetStringDefault(config, "inner_node_type", "")
	if innerType == "" {
		return nil, fmt.Errorf("best_of_n: config.inner_node_type is required")
	}
	n := e.GetIntDefault(config, "n", 1)
	if n < 1 {
		n = 1
	}

	inner, err := e.manager.Get(innerType)
	if err != nil {
		return nil, fmt.Errorf("best_of_n: %w", err)
	}

	innerConfig, _ := config["inner_config"].(map[string]any)

	samples := make([]any, n)
	var firstErr error
	for i := 0; i < n; i++ {
		out, err := inner.Execute(ctx, innerConfig, input)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			samples[i] = nil
			continue
		}
		samples[i] = out
	}

	selector := e.Selector
	if selector == nil {
		selector = FirstSuccessful
	}
	idx := selector(samples)
	if idx < 0 {
		if firstErr != nil {
			return nil, fmt.Errorf("best_of_n: all %d samples failed, first error: %w", n, firstErr)
		}
		return nil, fmt.Errorf("best_of_n: no sample selected")
	}
	return samples[idx], nil
}
