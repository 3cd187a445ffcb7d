package builder

import (
	"testing"

	"github.com/nodeflow/nodeflow/pkg/models"
)

func TestNewInputNode_Build(t *testing.T) {
	node, err := NewInputNode("in", "Input", WithNodeDescription("entry point")).Build()
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if node.Type != models.NodeTypeInput {
		t.Errorf("expected type %s, got %s", models.NodeTypeInput, node.Type)
	}
	if node.Description != "entry point" {
		t.Errorf("expected description to be set, got %q", node.Description)
	}
}

func TestNewRouterNode_Build(t *testing.T) {
	routes := []map[string]any{
		{"handle": "yes", "condition": "output.ok == true"},
		{"handle": "no", "condition": "output.ok == false"},
	}
	node, err := NewRouterNode("r", "Router", routes).Build()
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if node.Type != models.NodeTypeRouter {
		t.Errorf("expected type %s, got %s", models.NodeTypeRouter, node.Type)
	}
	got, ok := node.Config["routes"].([]map[string]any)
	if !ok || len(got) != 2 {
		t.Errorf("expected routes config to round-trip, got %v", node.Config["routes"])
	}
}

func TestNewHumanInterventionNode_BlockedNodes(t *testing.T) {
	node, err := NewHumanInterventionNode("gate", "Approval", []string{"a", "b"}).Build()
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	blocked, ok := node.Config["blocked_nodes"].([]any)
	if !ok || len(blocked) != 2 {
		t.Fatalf("expected 2 blocked nodes, got %v", node.Config["blocked_nodes"])
	}
	if blocked[0] != "a" || blocked[1] != "b" {
		t.Errorf("unexpected blocked node order: %v", blocked)
	}
}

func TestNewBestOfNNode_Config(t *testing.T) {
	node, err := NewBestOfNNode("bn", "Best of N", "generic", 5).Build()
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if node.Config["inner_node_type"] != "generic" {
		t.Errorf("expected inner_node_type %q, got %v", "generic", node.Config["inner_node_type"])
	}
	if node.Config["n"] != 5 {
		t.Errorf("expected n=5, got %v", node.Config["n"])
	}
}

func TestGridPosition(t *testing.T) {
	node, err := NewInputNode("a", "A", GridPosition(1, 2)).Build()
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if node.Position.X != 400 || node.Position.Y != 200 {
		t.Errorf("expected position (400, 200), got (%v, %v)", node.Position.X, node.Position.Y)
	}
}

func TestGridPosition_RejectsNegative(t *testing.T) {
	_, err := NewInputNode("a", "A", GridPosition(-1, 0)).Build()
	if err == nil {
		t.Error("expected an error for a negative grid coordinate")
	}
}

func TestWithNodeMetadata_RejectsEmptyKey(t *testing.T) {
	_, err := NewInputNode("a", "A", WithNodeMetadata("", "v")).Build()
	if err == nil {
		t.Error("expected an error for an empty metadata key")
	}
}

func TestWithConfigValue(t *testing.T) {
	node, err := NewNode("g", models.NodeTypeGeneric, "Generic", WithConfigValue("executor", "http")).Build()
	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}
	if node.Config["executor"] != "http" {
		t.Errorf("expected config value to round-trip, got %v", node.Config["executor"])
	}
}
