package models

import "fmt"

// Link is a directed edge carrying a producer's output to a
// consumer's input. SourceHandle selects which named output channel
// of a RouterNode feeds this link; it is ignored for any other
// source node type.
type Link struct {
	ID           string `json:"id,omitempty"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id"`
	SourceHandle string `json:"source_handle,omitempty"`
}

// Validate checks the link's own shape. Whether SourceHandle is
// required depends on the source node's type, which the loader
// checks with graph context (see engine.LoadWorkflow).
func (l *Link) Validate() error {
	if l.SourceID == "" || l.TargetID == "" {
		return fmt.Errorf("link must have both source_id and target_id")
	}
	return nil
}
