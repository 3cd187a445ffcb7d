package builtin

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/nodeflow/nodeflow/pkg/executor"
)

// ConditionalExecutor is the "conditional" node type: it evaluates an
// expr-lang boolean expression against its input and returns the
// boolean. It does not implement engine.ConditionEvaluator; a
// RouterNode's route conditions are evaluated by RouterExecutor.
type ConditionalExecutor struct {
	*executor.BaseExecutor
}

// NewConditionalExecutor creates a conditional executor.
func NewConditionalExecutor() *ConditionalExecutor {
	return &ConditionalExecutor{
		BaseExecutor: executor.NewBaseExecutor("conditional"),
	}
}

// Execute evaluates the configured expression against input, which
// is made available to the expression as the `input` variable.
// condition_type currently only supports "expression" (the default).
func (e *ConditionalExecutor) Execute(_ context.Context, config map[string]any, input any) (any, error) {
	condType := e.GetStringDefault(config, "condition_type", "expression")
	if condType != "expression" {
		return nil, fmt.Errorf("unknown condition type: %s", condType)
	}

	condition := e.GetStringDefault(config, "condition", "")
	if condition == "" {
		return nil, fmt.Errorf("condition is required")
	}

	env := map[string]any{"input": input}

	program, err := expr.Compile(condition, expr.Env(env))
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("failed to execute expression: %w", err)
	}

	boolResult, ok := result.(bool)
	if !ok {
		return nil, fmt.Errorf("expression result is not a boolean, got %T", result)
	}

	return boolResult, nil
}

// Validate checks that condition_type (if set) is "expression" and
// that an expression is configured under "condition" (the key Execute
// reads) or "expression".
func (e *ConditionalExecutor) Validate(config map[string]any) error {
	condType := e.GetStringDefault(config, "condition_type", "expression")
	if condType != "expression" {
		return fmt.Errorf("invalid condition type: %s", condType)
	}
	if e.GetStringDefault(config, "condition", "") == "" && e.GetStringDefault(config, "expression", "") == "" {
		return fmt.Errorf("expression is required")
	}
	return nil
}
