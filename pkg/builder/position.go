package builder

import (
	"fmt"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// RelativePosition positions a node at a fixed offset from another
// node. The offset is resolved eagerly against the supplied
// coordinates rather than the referenced node's eventual position.
// Callers that need true relative layout should position the
// reference node first and pass its known coordinates here.
func RelativePosition(refNodeID string, offsetX, offsetY float64) NodeOption {
	return func(nb *NodeBuilder) error {
		if refNodeID == "" {
			return fmt.Errorf("reference node ID cannot be empty")
		}

		if nb.metadata == nil {
			nb.metadata = make(map[string]any)
		}
		nb.metadata["_position_ref"] = map[string]any{
			"ref_node": refNodeID,
			"offset_x": offsetX,
			"offset_y": offsetY,
		}

		nb.position = &models.Position{
			X: offsetX,
			Y: offsetY,
		}

		return nil
	}
}

// AutoLayoutPosition defers positioning to WorkflowBuilder's
// WithAutoLayout, which assigns positions by insertion order.
func AutoLayoutPosition() NodeOption {
	return func(nb *NodeBuilder) error {
		return nil
	}
}
