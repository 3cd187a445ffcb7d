package builtin

import (
	"context"
	"testing"
)

func TestCoalesceExecutor_Execute_PassesThroughInput(t *testing.T) {
	executor := NewCoalesceExecutor()

	input := map[string]any{"a": 1, "b": nil}
	result, err := executor.Execute(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	out, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("Expected map[string]any result, got: %T", result)
	}
	if out["a"] != 1 {
		t.Errorf("Expected passthrough of key 'a', got: %v", out)
	}
}

func TestCoalesceExecutor_Execute_NilInput(t *testing.T) {
	executor := NewCoalesceExecutor()

	result, err := executor.Execute(context.Background(), map[string]any{}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil passthrough, got: %v", result)
	}
}
