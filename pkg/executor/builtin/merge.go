package builtin

import (
	"fmt"
	"context"

	"github.com/nodeflow/nodeflow/pkg/executor"
)

// MergeExecutor implements the "merge" node type, the non-gating
// counterpart to CoalesceNode (which CoalesceExecutor implements): it
// passes its assembled input through unchanged. The scheduler skips a
// non-CoalesceNode that has a null predecessor output, so Execute only
// sees non-null entries, and "all" and "any" differ only in validation
// intent, not in runtime behavior: both are pass-through.
type MergeExecutor struct {
	*executor.BaseExecutor
}

// NewMergeExecutor creates a merge executor.
func NewMergeExecutor() *MergeExecutor {
	return &MergeExecutor{
		BaseExecutor: executor.NewBaseExecutor("merge"),
	}
}

func (e *MergeExecutor) strategy(config map[string]any) (string, error) {
	strategy := e.GetStringDefault(config, "merge_strategy", "all")
	if strategy != "all" && strategy != "any" {
		return "", fmt.Errorf("invalid merge strategy: %s", strategy)
	}
	return strategy, nil
}

// Execute passes the assembled (non-null) input through unchanged.
func (e *MergeExecutor) Execute(_ context.Context, config map[string]any, input any) (any, error) {
	if _, err := e.strategy(config); err != nil {
		return nil, fmt.Errorf("unknown merge strategy: %v", config["merge_strategy"])
	}
	return input, nil
}

// Validate checks merge_strategy is one of "all" or "any".
func (e *MergeExecutor) Validate(config map[string]any) error {
	_, err := e.strategy(config)
	return err
}
