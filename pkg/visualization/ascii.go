package visualization

import (
	"fmt"
	"os"
	"strings"

	"github.com/nodeflow/nodeflow/pkg/models"
	"golang.org/x/term"
)

// ASCIIRenderer renders workflows as ASCII tree graphs.
type ASCIIRenderer struct{}

// NewASCIIRenderer creates a new ASCII renderer.
func NewASCIIRenderer() *ASCIIRenderer {
	return &ASCIIRenderer{}
}

// Format returns the format identifier.
func (r *ASCIIRenderer) Format() string {
	return "ascii"
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

// Box drawing characters
const (
	branchChar     = "├── "
	lastBranchChar = "└── "
	verticalChar   = "│   "
	emptyChar      = "    "
)

// Render converts a workflow into ASCII tree format.
func (r *ASCIIRenderer) Render(workflow *models.Workflow, opts *RenderOptions) (string, error) {
	if workflow == nil {
		return "", fmt.Errorf("workflow is nil")
	}

	if opts == nil {
		opts = DefaultRenderOptions()
	}

	if opts.UseColor {
		opts.UseColor = isTerminal()
	}

	var sb strings.Builder

	title := workflow.Name
	if title == "" {
		title = workflow.ID
	}
	sb.WriteString(r.colorize(title, colorCyan, opts.UseColor))
	sb.WriteString("\n\n")

	graph := r.buildGraph(workflow)
	rootNodes := r.findRootNodes(workflow)

	if len(rootNodes) == 0 && len(workflow.Nodes) > 0 {
		rootNodes = []*models.Node{workflow.Nodes[0]}
	}

	visited := make(map[string]bool)
	for i, root := range rootNodes {
		isLast := i == len(rootNodes)-1
		r.renderNode(&sb, root, graph, "", isLast, visited, opts)
	}

	return sb.String(), nil
}

// graphNode represents a node in the adjacency list.
type graphNode struct {
	Node     *models.Node
	Children []*graphEdge
}

// graphEdge represents an edge and the source handle that produced it.
type graphEdge struct {
	Target *models.Node
	Handle string
}

// buildGraph creates an adjacency list representation of the workflow.
func (r *ASCIIRenderer) buildGraph(workflow *models.Workflow) map[string]*graphNode {
	graph := make(map[string]*graphNode)

	for _, node := range workflow.Nodes {
		graph[node.ID] = &graphNode{
			Node:     node,
			Children: []*graphEdge{},
		}
	}

	for _, link := range workflow.Links {
		if parent, ok := graph[link.SourceID]; ok {
			if child, ok := graph[link.TargetID]; ok {
				parent.Children = append(parent.Children, &graphEdge{
					Target: child.Node,
					Handle: link.SourceHandle,
				})
			}
		}
	}

	return graph
}

// findRootNodes finds nodes with no incoming links.
func (r *ASCIIRenderer) findRootNodes(workflow *models.Workflow) []*models.Node {
	hasIncoming := make(map[string]bool)

	for _, link := range workflow.Links {
		hasIncoming[link.TargetID] = true
	}

	var roots []*models.Node
	for _, node := range workflow.Nodes {
		if !hasIncoming[node.ID] {
			roots = append(roots, node)
		}
	}

	return roots
}

// renderNode recursively renders a node and its children.
func (r *ASCIIRenderer) renderNode(
	sb *strings.Builder,
	node *models.Node,
	graph map[string]*graphNode,
	prefix string,
	isLast bool,
	visited map[string]bool,
	opts *RenderOptions,
) {
	if visited[node.ID] {
		if prefix != "" {
			if isLast {
				sb.WriteString(prefix + lastBranchChar)
			} else {
				sb.WriteString(prefix + branchChar)
			}
		}
		sb.WriteString(r.colorize("(cycle detected: "+node.ID+")", colorRed, opts.UseColor))
		sb.WriteString("\n")
		return
	}

	visited[node.ID] = true

	if prefix != "" {
		if isLast {
			sb.WriteString(prefix + lastBranchChar)
		} else {
			sb.WriteString(prefix + branchChar)
		}
	}

	sb.WriteString(r.formatNode(node, opts))
	sb.WriteString("\n")

	if !opts.CompactMode && opts.ShowConfig {
		configStr := r.extractNodeConfig(node)
		if configStr != "" {
			configPrefix := prefix
			if prefix != "" {
				if isLast {
					configPrefix += emptyChar
				} else {
					configPrefix += verticalChar
				}
			}
			sb.WriteString(configPrefix)
			sb.WriteString(r.colorize("│ "+configStr, colorWhite, opts.UseColor))
			sb.WriteString("\n")
		}
	}

	gNode, ok := graph[node.ID]
	if !ok || len(gNode.Children) == 0 {
		return
	}

	childPrefix := prefix
	if isLast {
		childPrefix += emptyChar
	} else {
		childPrefix += verticalChar
	}

	for i, edge := range gNode.Children {
		isLastChild := i == len(gNode.Children)-1
		r.renderNode(sb, edge.Target, graph, childPrefix, isLastChild, visited, opts)
	}
}

// formatNode formats a node for display.
func (r *ASCIIRenderer) formatNode(node *models.Node, opts *RenderOptions) string {
	if opts.CompactMode {
		return fmt.Sprintf("%s %s",
			r.colorize(node.ID, colorGreen, opts.UseColor),
			r.colorize("("+string(node.Type)+")", colorYellow, opts.UseColor))
	}

	var parts []string

	parts = append(parts, r.colorize("["+node.ID+"]", colorGreen, opts.UseColor))

	if node.Title != "" {
		parts = append(parts, node.Title)
	}

	parts = append(parts, r.colorize("("+string(node.Type)+")", colorYellow, opts.UseColor))

	return strings.Join(parts, " ")
}

// extractNodeConfig extracts key configuration for display.
func (r *ASCIIRenderer) extractNodeConfig(node *models.Node) string {
	switch node.Type {
	case models.NodeTypeRouter:
		if routes, ok := node.Config["routes"].([]any); ok {
			return fmt.Sprintf("%d route(s)", len(routes))
		}
	case models.NodeTypeBestOfN:
		inner, _ := node.Config["inner_node_type"].(string)
		n, _ := node.Config["n"].(int)
		if inner != "" {
			return fmt.Sprintf("%s x%d", inner, n)
		}
	case models.NodeTypeHumanIntervention:
		if blocked, ok := node.Config["blocked_nodes"].([]any); ok {
			return fmt.Sprintf("blocks %d node(s)", len(blocked))
		}
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

// colorize applies ANSI color codes to text.
func (r *ASCIIRenderer) colorize(text, color string, enabled bool) string {
	if !enabled {
		return text
	}
	return color + text + colorReset
}

// isTerminal checks if stdout is a terminal (for auto-detecting color support).
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
