package builtin

import (
	"context"
	"errors"
	"testing"

	"github.com/nodeflow/nodeflow/pkg/models"
)

func TestHumanInterventionExecutor_Execute_NotApprovedRaisesPauseSignal(t *testing.T) {
	executor := NewHumanInterventionExecutor()

	config := map[string]any{
		"node_id":       "hi1",
		"blocked_nodes": []any{"downstream1", "downstream2"},
	}

	_, err := executor.Execute(context.Background(), config, nil)
	if err == nil {
		t.Fatal("Expected a pause signal error, got nil")
	}

	var pause *models.PauseSignal
	if !errors.As(err, &pause) {
		t.Fatalf("Expected a *models.PauseSignal, got: %v", err)
	}
	if pause.NodeID != "hi1" {
		t.Errorf("Expected pause signal for node hi1, got: %s", pause.NodeID)
	}
	if !models.IsPaused(pause.Output) {
		t.Errorf("Expected output to report paused, got: %v", pause.Output)
	}
	if !models.BlocksNode(pause.Output, "downstream1") {
		t.Errorf("Expected output to block downstream1")
	}
}

func TestHumanInterventionExecutor_Execute_ApprovedResumes(t *testing.T) {
	executor := NewHumanInterventionExecutor()

	config := map[string]any{
		"blocked_nodes": []any{"downstream1"},
		"approved":      true,
	}

	result, err := executor.Execute(context.Background(), config, nil)
	if err != nil {
		t.Fatalf("Expected no error once approved, got: %v", err)
	}

	out, ok := result.(models.NodeOutput)
	if !ok {
		t.Fatalf("Expected models.NodeOutput, got: %T", result)
	}
	if models.IsPaused(out) {
		t.Errorf("Expected output to no longer be paused")
	}
	if models.BlocksNode(out, "downstream1") {
		t.Errorf("Expected an approved output to stop blocking downstream nodes")
	}
}
