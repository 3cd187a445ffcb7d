package engine

import (
	"errors"
	"fmt"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// ErrInvalidGraph is raised by the loader before any execution begins:
// a dangling link endpoint, a RouterNode link missing its handle,
// zero/multiple top-level InputNodes, or a cycle.
var ErrInvalidGraph = errors.New("invalid graph")

// ErrUnconnectedNode is raised when a non-InputNode assembles an empty
// input map. It has predecessors but none of them produced a usable
// value, and it isn't exempt the way CoalesceNode is.
var ErrUnconnectedNode = errors.New("unconnected node")

// UpstreamFailureError is raised from a node's execution handle when a
// predecessor failed or was itself skipped; the concurrent driver uses
// it to mark descendants without re-running them.
type UpstreamFailureError struct {
	NodeID string
	Reason string
}

func (e *UpstreamFailureError) Error() string {
	return fmt.Sprintf("node %s skipped due to upstream failure: %s", e.NodeID, e.Reason)
}

func (e *UpstreamFailureError) Unwrap() error { return nil }

// NewUpstreamFailure builds an UpstreamFailureError for nodeID.
func NewUpstreamFailure(nodeID, reason string) *UpstreamFailureError {
	return &UpstreamFailureError{NodeID: nodeID, Reason: reason}
}

// NodeFailureError wraps any exception from node invocation not
// enumerated by the other error kinds. It carries the node id and the
// underlying error; the scheduler truncates the error text it records
// to 2000 characters.
type NodeFailureError struct {
	NodeID string
	Err    error
}

func (e *NodeFailureError) Error() string {
	return fmt.Sprintf("node %s failed: %v", e.NodeID, e.Err)
}

func (e *NodeFailureError) Unwrap() error { return e.Err }

// NewNodeFailure builds a NodeFailureError for nodeID wrapping err.
func NewNodeFailure(nodeID string, err error) *NodeFailureError {
	return &NodeFailureError{NodeID: nodeID, Err: err}
}

// PauseSignal is re-exported from models so engine callers never need
// to import models directly just to catch a pause with errors.As.
type PauseSignal = models.PauseSignal
