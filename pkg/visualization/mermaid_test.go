package visualization

import (
	"strings"
	"testing"

	"github.com/nodeflow/nodeflow/pkg/models"
)

func simpleWorkflow() *models.Workflow {
	return &models.Workflow{
		Nodes: []*models.Node{
			{ID: "in", Title: "Start", Type: models.NodeTypeInput},
			{ID: "out", Title: "End", Type: models.NodeTypeOutput},
		},
		Links: []*models.Link{
			{ID: "l1", SourceID: "in", TargetID: "out"},
		},
	}
}

func TestMermaidRenderer_Format(t *testing.T) {
	if NewMermaidRenderer().Format() != "mermaid" {
		t.Errorf("expected format %q", "mermaid")
	}
}

func TestMermaidRenderer_Render_Basic(t *testing.T) {
	out, err := NewMermaidRenderer().Render(simpleWorkflow(), DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	if !strings.Contains(out, "flowchart TB") {
		t.Errorf("expected default TB direction, got:\n%s", out)
	}
	if !strings.Contains(out, `in["Input: Start"]`) {
		t.Errorf("expected input node box, got:\n%s", out)
	}
	if !strings.Contains(out, "in --> out") {
		t.Errorf("expected link in --> out, got:\n%s", out)
	}
}

func TestMermaidRenderer_Render_NilWorkflow(t *testing.T) {
	_, err := NewMermaidRenderer().Render(nil, nil)
	if err == nil {
		t.Error("expected an error for a nil workflow")
	}
}

func TestMermaidRenderer_Render_Direction(t *testing.T) {
	opts := DefaultRenderOptions()
	opts.Direction = "LR"

	out, err := NewMermaidRenderer().Render(simpleWorkflow(), opts)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, "flowchart LR") {
		t.Errorf("expected LR direction, got:\n%s", out)
	}
}

func TestMermaidRenderer_RouterNodeShape(t *testing.T) {
	wf := &models.Workflow{
		Nodes: []*models.Node{
			{ID: "r", Title: "Check", Type: models.NodeTypeRouter, Config: map[string]any{
				"routes": []any{
					map[string]any{"handle": "yes"},
					map[string]any{"handle": "no"},
				},
			}},
		},
	}

	out, err := NewMermaidRenderer().Render(wf, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, `r{"Router: Check<br/>yes, no"}`) {
		t.Errorf("expected router diamond shape with route handles, got:\n%s", out)
	}
}

func TestMermaidRenderer_MultipleRoutesWithHandles(t *testing.T) {
	wf := &models.Workflow{
		Nodes: []*models.Node{
			{ID: "r", Type: models.NodeTypeRouter},
			{ID: "a", Type: models.NodeTypeOutput},
			{ID: "b", Type: models.NodeTypeOutput},
		},
		Links: []*models.Link{
			{ID: "l1", SourceID: "r", TargetID: "a", SourceHandle: "yes"},
			{ID: "l2", SourceID: "r", TargetID: "b", SourceHandle: "no"},
		},
	}

	out, err := NewMermaidRenderer().Render(wf, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, `r -- "yes" --> a`) || !strings.Contains(out, `r -- "no" --> b`) {
		t.Errorf("expected handle-labeled edges, got:\n%s", out)
	}
}
