package models

import "testing"

func TestNodeExecutionModel_BeforeInsert(t *testing.T) {
	ne := &NodeExecutionModel{RunID: "run-1", NodeID: "node-1"}

	if err := ne.BeforeInsert(nil); err != nil {
		t.Fatalf("BeforeInsert returned error: %v", err)
	}

	if ne.CreatedAt.IsZero() || ne.UpdatedAt.IsZero() || ne.StartedAt.IsZero() {
		t.Error("expected timestamps to be stamped on insert")
	}
	if ne.Input == nil {
		t.Error("expected Input to default to an empty map")
	}
}

func TestNodeExecutionModel_IsTerminal(t *testing.T) {
	cases := map[string]bool{
		"PENDING":   false,
		"RUNNING":   false,
		"PAUSED":    false,
		"COMPLETED": true,
		"FAILED":    true,
		"CANCELED":  true,
	}
	for status, want := range cases {
		ne := &NodeExecutionModel{Status: status}
		if got := ne.IsTerminal(); got != want {
			t.Errorf("status %s: IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestNodeExecutionModel_TableName(t *testing.T) {
	if (NodeExecutionModel{}).TableName() != "node_executions" {
		t.Errorf("expected table name %q, got %q", "node_executions", (NodeExecutionModel{}).TableName())
	}
}
