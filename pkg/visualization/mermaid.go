package visualization

import (
	"fmt"
	"strings"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// MermaidRenderer renders workflows as Mermaid flowchart diagrams.
type MermaidRenderer struct{}

// NewMermaidRenderer creates a new Mermaid renderer.
func NewMermaidRenderer() *MermaidRenderer {
	return &MermaidRenderer{}
}

// Format returns the format identifier.
func (r *MermaidRenderer) Format() string {
	return "mermaid"
}

// Render converts a workflow into Mermaid flowchart syntax.
func (r *MermaidRenderer) Render(workflow *models.Workflow, opts *RenderOptions) (string, error) {
	if workflow == nil {
		return "", fmt.Errorf("workflow is nil")
	}

	if opts == nil {
		opts = DefaultRenderOptions()
	}

	var sb strings.Builder

	if len(opts.ThemeVariables) > 0 {
		sb.WriteString("---\n")
		sb.WriteString("config:\n")
		sb.WriteString("  theme: base\n")
		sb.WriteString("  themeVariables:\n")
		for key, value := range opts.ThemeVariables {
			sb.WriteString(fmt.Sprintf("    %s: \"%s\"\n", key, value))
		}
		sb.WriteString("---\n")
	}

	sb.WriteString("flowchart ")
	direction := opts.Direction
	if direction == "" {
		direction = "TB"
	}
	sb.WriteString(direction)
	sb.WriteString("\n")

	for _, node := range workflow.Nodes {
		sb.WriteString("    ")
		sb.WriteString(r.renderNode(node, opts))
		sb.WriteString("\n")
	}

	if len(workflow.Links) > 0 {
		sb.WriteString("\n")

		linksBySource := make(map[string][]*models.Link)
		for _, link := range workflow.Links {
			linksBySource[link.SourceID] = append(linksBySource[link.SourceID], link)
		}

		for sourceID, links := range linksBySource {
			if len(links) == 1 {
				sb.WriteString("    ")
				sb.WriteString(r.renderLink(links[0], opts))
				sb.WriteString("\n")
				continue
			}

			allUnhandled := true
			for _, link := range links {
				if opts.ShowHandles && link.SourceHandle != "" {
					allUnhandled = false
					break
				}
			}

			if allUnhandled {
				sb.WriteString("    ")
				sb.WriteString(sourceID)
				sb.WriteString(" --> ")
				for i, link := range links {
					if i > 0 {
						sb.WriteString(" & ")
					}
					sb.WriteString(link.TargetID)
				}
				sb.WriteString("\n")
			} else {
				for _, link := range links {
					sb.WriteString("    ")
					sb.WriteString(r.renderLink(link, opts))
					sb.WriteString("\n")
				}
			}
		}
	}

	if opts.ShowConfig {
		sb.WriteString(r.renderNodeStyles())
		sb.WriteString("\n")
		sb.WriteString(r.applyNodeClasses(workflow))
	}

	return sb.String(), nil
}

// renderNode formats a single node based on its type.
func (r *MermaidRenderer) renderNode(node *models.Node, opts *RenderOptions) string {
	label := r.buildNodeLabel(node, opts)

	switch node.Type {
	case models.NodeTypeRouter:
		return fmt.Sprintf(`%s{"%s"}`, node.ID, label)
	case models.NodeTypeCoalesce:
		return fmt.Sprintf(`%s{{"%s"}}`, node.ID, label)
	case models.NodeTypeHumanIntervention:
		return fmt.Sprintf(`%s(["%s"])`, node.ID, label)
	default:
		switch string(node.Type) {
		case "conditional":
			return fmt.Sprintf(`%s{"%s"}`, node.ID, label)
		case "merge":
			return fmt.Sprintf(`%s{{"%s"}}`, node.ID, label)
		}
		return fmt.Sprintf(`%s["%s"]`, node.ID, label)
	}
}

// buildNodeLabel constructs the node label with type prefix and configuration.
func (r *MermaidRenderer) buildNodeLabel(node *models.Node, opts *RenderOptions) string {
	var parts []string

	typePrefix := r.getNodeTypePrefix(node)
	if typePrefix != "" {
		parts = append(parts, typePrefix)
	}

	if node.Title != "" {
		parts = append(parts, node.Title)
	} else {
		parts = append(parts, node.ID)
	}

	label := strings.Join(parts, ": ")

	if opts.ShowConfig && len(node.Config) > 0 {
		configStr := r.extractKeyConfig(node)
		if configStr != "" {
			label = label + "<br/>" + configStr
		}
	}

	label = strings.ReplaceAll(label, `"`, "&quot;")

	return label
}

// getNodeTypePrefix returns a human-readable prefix for the node type.
func (r *MermaidRenderer) getNodeTypePrefix(node *models.Node) string {
	switch node.Type {
	case models.NodeTypeInput:
		return "Input"
	case models.NodeTypeOutput:
		return "Output"
	case models.NodeTypeRouter:
		return "Router"
	case models.NodeTypeCoalesce:
		return "Coalesce"
	case models.NodeTypeHumanIntervention:
		return "Human Approval"
	case models.NodeTypeBestOfN:
		return "Best-of-N"
	default:
		switch string(node.Type) {
		case "conditional":
			return "If"
		case "merge":
			return "Merge"
		case "html_clean":
			return "HTML Clean"
		case "csv_to_json":
			return "CSV→JSON"
		}
		return strings.ToUpper(string(node.Type))
	}
}

// extractKeyConfig extracts key configuration parameters for display.
func (r *MermaidRenderer) extractKeyConfig(node *models.Node) string {
	switch node.Type {
	case models.NodeTypeRouter:
		if routes, ok := node.Config["routes"].([]any); ok {
			handles := make([]string, 0, len(routes))
			for _, route := range routes {
				if rm, ok := route.(map[string]any); ok {
					if h, ok := rm["handle"].(string); ok {
						handles = append(handles, h)
					}
				}
			}
			return strings.Join(handles, ", ")
		}
	case models.NodeTypeBestOfN:
		inner, _ := node.Config["inner_node_type"].(string)
		return inner
	default:
		switch string(node.Type) {
		case "conditional":
			cond, _ := node.Config["condition"].(string)
			return cond
		case "merge":
			strategy, _ := node.Config["merge_strategy"].(string)
			return strategy
		}
	}
	return ""
}

// renderLink formats a link connection.
func (r *MermaidRenderer) renderLink(link *models.Link, opts *RenderOptions) string {
	if opts.ShowHandles && link.SourceHandle != "" {
		return fmt.Sprintf(`%s -- "%s" --> %s`, link.SourceID, r.escapeHTML(link.SourceHandle), link.TargetID)
	}
	return fmt.Sprintf("%s --> %s", link.SourceID, link.TargetID)
}

// escapeHTML escapes HTML special characters for Mermaid labels.
func (r *MermaidRenderer) escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	text = strings.ReplaceAll(text, `"`, "&quot;")
	return text
}

// renderNodeStyles generates CSS styling for different node types.
func (r *MermaidRenderer) renderNodeStyles() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("    %% Node type styles\n")
	sb.WriteString("    classDef inputNode fill:#D0E6FF,stroke:#1A73E8,stroke-width:2px,color:#000\n")
	sb.WriteString("    classDef outputNode fill:#D0E6FF,stroke:#1A73E8,stroke-width:2px,color:#000\n")
	sb.WriteString("    classDef routerNode fill:#DFF7E3,stroke:#34A853,stroke-width:2px,color:#000\n")
	sb.WriteString("    classDef coalesceNode fill:#FFD9E6,stroke:#EA4C89,stroke-width:2px,color:#000\n")
	sb.WriteString("    classDef humanNode fill:#FFF3CD,stroke:#F7931A,stroke-width:2px,color:#000\n")
	sb.WriteString("    classDef bestOfNNode fill:#E8D9FF,stroke:#8E57FF,stroke-width:2px,color:#000\n")
	return sb.String()
}

// applyNodeClasses applies CSS classes to nodes based on their type.
func (r *MermaidRenderer) applyNodeClasses(workflow *models.Workflow) string {
	var sb strings.Builder

	nodesByType := make(map[string][]string)
	for _, node := range workflow.Nodes {
		className := r.getNodeClassName(node.Type)
		if className != "" {
			nodesByType[className] = append(nodesByType[className], node.ID)
		}
	}

	for className, nodeIDs := range nodesByType {
		if len(nodeIDs) > 0 {
			sb.WriteString("    class ")
			for i, nodeID := range nodeIDs {
				if i > 0 {
					sb.WriteString(",")
				}
				sb.WriteString(nodeID)
			}
			sb.WriteString(" ")
			sb.WriteString(className)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// getNodeClassName returns the CSS class name for a node type.
func (r *MermaidRenderer) getNodeClassName(nodeType models.NodeType) string {
	switch nodeType {
	case models.NodeTypeInput:
		return "inputNode"
	case models.NodeTypeOutput:
		return "outputNode"
	case models.NodeTypeRouter:
		return "routerNode"
	case models.NodeTypeCoalesce:
		return "coalesceNode"
	case models.NodeTypeHumanIntervention:
		return "humanNode"
	case models.NodeTypeBestOfN:
		return "bestOfNNode"
	default:
		return ""
	}
}
