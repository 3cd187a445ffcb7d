package visualization

import (
	"strings"
	"testing"

	"github.com/nodeflow/nodeflow/pkg/models"
)

func TestASCIIRenderer_Format(t *testing.T) {
	if NewASCIIRenderer().Format() != "ascii" {
		t.Errorf("expected format %q", "ascii")
	}
}

func TestASCIIRenderer_Render_Basic(t *testing.T) {
	wf := simpleWorkflow()
	wf.Name = "greeting"

	opts := DefaultRenderOptions()
	opts.UseColor = false

	out, err := NewASCIIRenderer().Render(wf, opts)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	if !strings.HasPrefix(out, "greeting\n") {
		t.Errorf("expected output to start with workflow name, got:\n%s", out)
	}
	if !strings.Contains(out, "[in] Start (InputNode)") {
		t.Errorf("expected input node line, got:\n%s", out)
	}
	if !strings.Contains(out, "└── [out] End (OutputNode)") {
		t.Errorf("expected output node as the only (last) child, got:\n%s", out)
	}
}

func TestASCIIRenderer_Render_NilWorkflow(t *testing.T) {
	_, err := NewASCIIRenderer().Render(nil, nil)
	if err == nil {
		t.Error("expected an error for a nil workflow")
	}
}

func TestASCIIRenderer_Render_CycleDetection(t *testing.T) {
	wf := &models.Workflow{
		Nodes: []*models.Node{
			{ID: "a", Type: models.NodeTypeInput},
			{ID: "b", Type: models.NodeTypeOutput},
		},
		Links: []*models.Link{
			{ID: "l1", SourceID: "a", TargetID: "b"},
			{ID: "l2", SourceID: "b", TargetID: "a"},
		},
	}
	opts := DefaultRenderOptions()
	opts.UseColor = false

	out, err := NewASCIIRenderer().Render(wf, opts)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, "cycle detected") {
		t.Errorf("expected cycle detection marker, got:\n%s", out)
	}
}

func TestASCIIRenderer_Render_NoRootFallsBackToFirstNode(t *testing.T) {
	// Every node has an incoming link (a cycle of two), so there is no
	// root; the renderer should still pick the first node and proceed.
	wf := &models.Workflow{
		Nodes: []*models.Node{
			{ID: "a", Type: models.NodeTypeInput},
			{ID: "b", Type: models.NodeTypeOutput},
		},
		Links: []*models.Link{
			{ID: "l1", SourceID: "a", TargetID: "b"},
			{ID: "l2", SourceID: "b", TargetID: "a"},
		},
	}
	opts := DefaultRenderOptions()
	opts.UseColor = false

	out, err := NewASCIIRenderer().Render(wf, opts)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, "[a]") {
		t.Errorf("expected the first node to be rendered as the fallback root, got:\n%s", out)
	}
}

func TestASCIIRenderer_CompactMode(t *testing.T) {
	wf := simpleWorkflow()
	opts := DefaultRenderOptions()
	opts.UseColor = false
	opts.CompactMode = true

	out, err := NewASCIIRenderer().Render(wf, opts)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, "in (InputNode)") {
		t.Errorf("expected compact node rendering, got:\n%s", out)
	}
}

func TestASCIIRenderer_RouterConfig(t *testing.T) {
	wf := &models.Workflow{
		Nodes: []*models.Node{
			{ID: "r", Type: models.NodeTypeRouter, Config: map[string]any{
				"routes": []any{map[string]any{"handle": "yes"}, map[string]any{"handle": "no"}},
			}},
		},
	}
	opts := DefaultRenderOptions()
	opts.UseColor = false

	out, err := NewASCIIRenderer().Render(wf, opts)
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	if !strings.Contains(out, "2 route(s)") {
		t.Errorf("expected route count annotation, got:\n%s", out)
	}
}
