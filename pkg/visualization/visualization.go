// Package visualization renders workflow graphs for inspection:
//
//   - Mermaid flowchart diagrams, for documentation and GitHub
//   - ASCII tree graphs, for console output
//
// Example usage:
//
//	renderer := visualization.NewMermaidRenderer()
//	opts := visualization.DefaultRenderOptions()
//	diagram, err := renderer.Render(workflow, opts)
package visualization

import (
	"github.com/nodeflow/nodeflow/pkg/models"
)

// Renderer converts a workflow into a diagram in one target format.
type Renderer interface {
	Render(workflow *models.Workflow, opts *RenderOptions) (string, error)
	Format() string
}

// RenderOptions configures how workflows are rendered.
type RenderOptions struct {
	// ShowConfig controls whether node configuration details are displayed.
	ShowConfig bool

	// ShowHandles controls whether RouterNode source handles are
	// displayed on edges.
	ShowHandles bool

	// ShowDescription is carried in the options, but neither renderer
	// reads it: node descriptions are not displayed.
	ShowDescription bool

	// UseColor enables ANSI color codes (ASCII renderer only).
	UseColor bool

	// CompactMode reduces the output size (ASCII renderer only).
	CompactMode bool

	// Direction sets the diagram flow direction (Mermaid renderer only).
	// Valid values: "TB" (top-bottom), "LR" (left-right), "RL" (right-left), "BT" (bottom-top).
	Direction string

	// ThemeVariables allows customizing Mermaid theme (Mermaid renderer only).
	ThemeVariables map[string]string
}

// DefaultRenderOptions returns the default rendering options.
func DefaultRenderOptions() *RenderOptions {
	return &RenderOptions{
		ShowConfig:      true,
		ShowHandles:     true,
		ShowDescription: false,
		UseColor:        true,
		CompactMode:     false,
		Direction:       "TB",
		ThemeVariables:  nil,
	}
}
