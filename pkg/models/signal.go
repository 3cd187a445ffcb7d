package models

import "fmt"

// PauseSignal is the cooperative, non-error control-flow value a
// HumanInterventionNode's execution raises when it cannot yet make
// progress. It is a distinct type precisely so that generic error
// handling (the scheduler's other-exception path, step 9) never
// mistakes it for a NodeFailure: callers must check for it explicitly
// with errors.As.
type PauseSignal struct {
	NodeID string
	Output NodeOutput
}

func (p *PauseSignal) Error() string {
	return fmt.Sprintf("node %s paused", p.NodeID)
}

// NewPauseSignal builds a PauseSignal for the given node and partial
// output.
func NewPauseSignal(nodeID string, output NodeOutput) *PauseSignal {
	return &PauseSignal{NodeID: nodeID, Output: output}
}
