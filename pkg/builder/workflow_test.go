package builder

import (
	"testing"

	"github.com/nodeflow/nodeflow/pkg/models"
)

func TestNewWorkflow_Build(t *testing.T) {
	wf, err := NewWorkflow("greeting",
		WithDescription("says hello"),
		WithVariable("greeting", "hi"),
		WithTags("demo", "greeting"),
	).
		AddNode(NewInputNode("in", "Input")).
		AddNode(NewOutputNode("out", "Output")).
		Connect("in", "out").
		Build()

	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	if wf.Name != "greeting" || wf.Description != "says hello" {
		t.Errorf("unexpected workflow fields: %+v", wf)
	}
	if wf.Variables["greeting"] != "hi" {
		t.Errorf("expected variable to be set, got %v", wf.Variables)
	}
	if len(wf.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(wf.Nodes))
	}
	if len(wf.Links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(wf.Links))
	}
	if wf.Links[0].SourceID != "in" || wf.Links[0].TargetID != "out" {
		t.Errorf("unexpected link endpoints: %+v", wf.Links[0])
	}
}

func TestWorkflowBuilder_DuplicateNodeID(t *testing.T) {
	_, err := NewWorkflow("dup").
		AddNode(NewInputNode("in", "Input")).
		AddNode(NewInputNode("in", "Input Again")).
		Build()

	if err == nil {
		t.Fatal("expected an error for a duplicate node ID")
	}
}

func TestWorkflowBuilder_AutoLayout(t *testing.T) {
	wf, err := NewWorkflow("auto", WithAutoLayout()).
		AddNode(NewInputNode("a", "A")).
		AddNode(NewInputNode("b", "B")).
		Build()

	if err != nil {
		t.Fatalf("Build() returned error: %v", err)
	}

	a := wf.NodeByID("a")
	b := wf.NodeByID("b")
	if a.Position == nil || b.Position == nil {
		t.Fatal("expected auto-layout to assign positions")
	}
	if a.Position.X == b.Position.X {
		t.Error("expected auto-laid-out nodes to receive distinct X coordinates")
	}
}

func TestWorkflowBuilder_MustBuild_PanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected MustBuild to panic on a build error")
		}
	}()

	NewWorkflow("broken").
		AddNode(nil).
		MustBuild()
}

func TestWithVariableRejectsEmptyKey(t *testing.T) {
	_, err := NewWorkflow("x", WithVariable("", "v")).Build()
	if err == nil {
		t.Error("expected an error for an empty variable key")
	}
}

func TestNodeByID(t *testing.T) {
	wf := &models.Workflow{
		Nodes: []*models.Node{{ID: "a"}, {ID: "b"}},
	}
	if wf.NodeByID("b") == nil {
		t.Error("expected to find node b")
	}
	if wf.NodeByID("missing") != nil {
		t.Error("expected nil for an unknown node id")
	}
}
