package builder

import (
	"fmt"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// NodeBuilder builds Node definitions.
type NodeBuilder struct {
	id          string
	title       string
	nodeType    models.NodeType
	description string
	config      map[string]any
	position    *models.Position
	metadata    map[string]any
	err         error
}

// NodeOption is a function that configures a NodeBuilder.
type NodeOption func(*NodeBuilder) error

// NewNode creates a new node builder for an arbitrary node type, the
// escape hatch for Generic nodes resolved through the executor
// registry by name.
func NewNode(id string, nodeType models.NodeType, title string, opts ...NodeOption) *NodeBuilder {
	nb := &NodeBuilder{
		id:       id,
		nodeType: nodeType,
		title:    title,
		config:   make(map[string]any),
		metadata: make(map[string]any),
	}

	for _, opt := range opts {
		if err := opt(nb); err != nil {
			nb.err = err
			return nb
		}
	}

	return nb
}

// NewInputNode creates an InputNode builder.
func NewInputNode(id, title string, opts ...NodeOption) *NodeBuilder {
	return NewNode(id, models.NodeTypeInput, title, opts...)
}

// NewOutputNode creates an OutputNode builder.
func NewOutputNode(id, title string, opts ...NodeOption) *NodeBuilder {
	return NewNode(id, models.NodeTypeOutput, title, opts...)
}

// NewRouterNode creates a RouterNode builder with its routes.
func NewRouterNode(id, title string, routes []map[string]any, opts ...NodeOption) *NodeBuilder {
	nb := NewNode(id, models.NodeTypeRouter, title, opts...)
	if nb.err == nil {
		nb.config["routes"] = routes
	}
	return nb
}

// NewCoalesceNode creates a CoalesceNode builder.
func NewCoalesceNode(id, title string, opts ...NodeOption) *NodeBuilder {
	return NewNode(id, models.NodeTypeCoalesce, title, opts...)
}

// NewHumanInterventionNode creates a HumanInterventionNode builder,
// blocking the given downstream node ids until approved.
func NewHumanInterventionNode(id, title string, blockedNodes []string, opts ...NodeOption) *NodeBuilder {
	nb := NewNode(id, models.NodeTypeHumanIntervention, title, opts...)
	if nb.err == nil {
		blocked := make([]any, len(blockedNodes))
		for i, b := range blockedNodes {
			blocked[i] = b
		}
		nb.config["blocked_nodes"] = blocked
	}
	return nb
}

// NewBestOfNNode creates a BestOfNNode builder sampling innerNodeType
// n times.
func NewBestOfNNode(id, title, innerNodeType string, n int, opts ...NodeOption) *NodeBuilder {
	nb := NewNode(id, models.NodeTypeBestOfN, title, opts...)
	if nb.err == nil {
		nb.config["inner_node_type"] = innerNodeType
		nb.config["n"] = n
	}
	return nb
}

// Build constructs the final Node.
func (nb *NodeBuilder) Build() (*models.Node, error) {
	if nb.err != nil {
		return nil, nb.err
	}

	node := &models.Node{
		ID:          nb.id,
		Title:       nb.title,
		Type:        nb.nodeType,
		Description: nb.description,
		Config:      nb.config,
		Position:    nb.position,
		Metadata:    nb.metadata,
	}

	if err := node.Validate(); err != nil {
		return nil, err
	}

	return node, nil
}

// WithNodeDescription sets the node description.
func WithNodeDescription(desc string) NodeOption {
	return func(nb *NodeBuilder) error {
		nb.description = desc
		return nil
	}
}

// WithPosition sets the node position (absolute coordinates).
func WithPosition(x, y float64) NodeOption {
	return func(nb *NodeBuilder) error {
		nb.position = &models.Position{X: x, Y: y}
		return nil
	}
}

// GridPosition calculates position in a grid layout.
// Uses 200px spacing for both X and Y.
func GridPosition(row, col int) NodeOption {
	return func(nb *NodeBuilder) error {
		if row < 0 || col < 0 {
			return fmt.Errorf("grid position row and col must be non-negative")
		}
		nb.position = &models.Position{
			X: float64(col * 200),
			Y: float64(row * 200),
		}
		return nil
	}
}

// WithNodeMetadata adds node metadata.
func WithNodeMetadata(key string, value any) NodeOption {
	return func(nb *NodeBuilder) error {
		if key == "" {
			return fmt.Errorf("metadata key cannot be empty")
		}
		nb.metadata[key] = value
		return nil
	}
}

// WithConfig sets the raw config map. Escape hatch for advanced use.
func WithConfig(config map[string]any) NodeOption {
	return func(nb *NodeBuilder) error {
		nb.config = config
		return nil
	}
}

// WithConfigValue sets a single config value.
func WithConfigValue(key string, value any) NodeOption {
	return func(nb *NodeBuilder) error {
		if key == "" {
			return fmt.Errorf("config key cannot be empty")
		}
		nb.config[key] = value
		return nil
	}
}
