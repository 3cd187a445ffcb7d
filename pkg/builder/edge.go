package builder

import (
	"fmt"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// EdgeBuilder builds Link definitions.
type EdgeBuilder struct {
	id           string
	from         string
	to           string
	sourceHandle string
	err          error
}

// EdgeOption is a function that configures an EdgeBuilder.
type EdgeOption func(*EdgeBuilder) error

// NewEdge creates a new edge builder.
// Link ID is auto-generated as "link_{from}_{to}" unless overridden.
func NewEdge(from, to string, opts ...EdgeOption) *EdgeBuilder {
	eb := &EdgeBuilder{
		from: from,
		to:   to,
		id:   fmt.Sprintf("link_%s_%s", from, to),
	}

	for _, opt := range opts {
		if err := opt(eb); err != nil {
			eb.err = err
			return eb
		}
	}

	return eb
}

// Build constructs the final Link.
func (eb *EdgeBuilder) Build() (*models.Link, error) {
	if eb.err != nil {
		return nil, eb.err
	}

	link := &models.Link{
		ID:           eb.id,
		SourceID:     eb.from,
		TargetID:     eb.to,
		SourceHandle: eb.sourceHandle,
	}

	if err := link.Validate(); err != nil {
		return nil, err
	}

	return link, nil
}

// WithEdgeID sets a custom link ID.
func WithEdgeID(id string) EdgeOption {
	return func(eb *EdgeBuilder) error {
		if id == "" {
			return fmt.Errorf("link ID cannot be empty")
		}
		eb.id = id
		return nil
	}
}

// WithSourceHandle sets the source handle. Required when the source
// node is a RouterNode. It names which declared route feeds this
// link.
func WithSourceHandle(handle string) EdgeOption {
	return func(eb *EdgeBuilder) error {
		if handle == "" {
			return fmt.Errorf("source handle cannot be empty")
		}
		eb.sourceHandle = handle
		return nil
	}
}

// FromHandle is an alias of WithSourceHandle for readability at call
// sites like Connect("router", "yes_branch", builder.FromHandle("yes")).
func FromHandle(handle string) EdgeOption {
	return WithSourceHandle(handle)
}
