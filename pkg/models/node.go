// Package models defines the workflow graph's data model: nodes, links,
// workflows, and the node output shapes the scheduler inspects.
package models

import "fmt"

// NodeType tags the closed set of engine-significant node kinds.
// Anything outside this set is a Generic node resolved through the
// open executor registry.
type NodeType string

const (
	NodeTypeInput             NodeType = "InputNode"
	NodeTypeOutput            NodeType = "OutputNode"
	NodeTypeRouter            NodeType = "RouterNode"
	NodeTypeCoalesce          NodeType = "CoalesceNode"
	NodeTypeHumanIntervention NodeType = "HumanInterventionNode"
	NodeTypeBestOfN           NodeType = "BestOfNNode"
	NodeTypeGeneric           NodeType = "Generic"
)

// Position is the node's position in the visual editor. Not used by
// the scheduler; carried for round-tripping workflow definitions.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a vertex in the workflow DAG.
type Node struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Type        NodeType       `json:"node_type"`
	Config      map[string]any `json:"config"`
	ParentID    *string        `json:"parent_id,omitempty"`
	Position    *Position      `json:"position,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Description string         `json:"description,omitempty"`
}

// Validate checks the node's own invariants, independent of the graph
// it belongs to.
func (n *Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("node must have an ID")
	}
	if n.Type == "" {
		return fmt.Errorf("node %s: node_type is required", n.ID)
	}
	return nil
}

// IsChild reports whether the node is owned by a parent (hoisted into
// a subworkflow during loading).
func (n *Node) IsChild() bool {
	return n.ParentID != nil && *n.ParentID != ""
}

// SubworkflowConfig returns the node's hoisted subworkflow, if any.
func (n *Node) SubworkflowConfig() (*Workflow, bool) {
	raw, ok := n.Config["subworkflow"]
	if !ok {
		return nil, false
	}
	wf, ok := raw.(*Workflow)
	return wf, ok
}

// WithConfigValue returns a shallow copy of the node with one config
// key set, merging rather than replacing the existing config map.
func (n *Node) WithConfigValue(key string, value any) *Node {
	cfg := make(map[string]any, len(n.Config)+1)
	for k, v := range n.Config {
		cfg[k] = v
	}
	cfg[key] = value
	clone := *n
	clone.Config = cfg
	return &clone
}
