package models

import "time"

// NodeOutput is the polymorphic result of a node invocation. The
// scheduler treats it as opaque map data except for the two
// capability checks below (router handle selection, human
// intervention pause state).
type NodeOutput map[string]any

// routerOutputMarker and the blocked/resume keys are the two capability
// shapes the scheduler knows about. A node's output is a RouterOutput
// or a HumanInterventionOutput by convention, not by a sealed type:
// any builtin executor can produce one by populating these keys.
const (
	routerOutputMarker = "__router_handles__"

	humanInterventionMarker = "__human_intervention__"
	blockedNodesKey         = "blocked_nodes"
	resumeTimeKey           = "resume_time"
)

// NewRouterOutput builds a NodeOutput recognized by AsRouterOutput.
// handles maps handle name to the sub-output routed through it; a nil
// value means "this route was not taken".
func NewRouterOutput(handles map[string]any) NodeOutput {
	out := make(NodeOutput, len(handles)+1)
	for k, v := range handles {
		out[k] = v
	}
	out[routerOutputMarker] = true
	return out
}

// AsRouterOutput reports whether out was produced by a RouterNode and,
// if so, returns the handle->value mapping (marker key excluded).
func AsRouterOutput(out NodeOutput) (map[string]any, bool) {
	if out == nil {
		return nil, false
	}
	if _, ok := out[routerOutputMarker]; !ok {
		return nil, false
	}
	handles := make(map[string]any, len(out)-1)
	for k, v := range out {
		if k == routerOutputMarker {
			continue
		}
		handles[k] = v
	}
	return handles, true
}

// NewHumanInterventionOutput builds a NodeOutput recognized by
// AsHumanInterventionOutput. A nil resumeTime means the node is
// currently paused.
func NewHumanInterventionOutput(blockedNodes []string, resumeTime *time.Time) NodeOutput {
	return NodeOutput{
		humanInterventionMarker: true,
		blockedNodesKey:         blockedNodes,
		resumeTimeKey:           resumeTime,
	}
}

// AsHumanInterventionOutput reports whether out was produced by a
// HumanInterventionNode and, if so, returns its blocked-node set and
// resume time (nil resume time == still paused).
func AsHumanInterventionOutput(out NodeOutput) (blockedNodes []string, resumeTime *time.Time, ok bool) {
	if out == nil {
		return nil, nil, false
	}
	if _, present := out[humanInterventionMarker]; !present {
		return nil, nil, false
	}
	if bn, ok := out[blockedNodesKey].([]string); ok {
		blockedNodes = bn
	}
	if rt, ok := out[resumeTimeKey].(*time.Time); ok {
		resumeTime = rt
	}
	return blockedNodes, resumeTime, true
}

// IsPaused reports whether a HumanInterventionOutput indicates the
// node is currently blocking its downstream nodes.
func IsPaused(out NodeOutput) bool {
	_, resumeTime, ok := AsHumanInterventionOutput(out)
	return ok && resumeTime == nil
}

// BlocksNode reports whether a paused HumanInterventionOutput lists
// nodeID among its blocked nodes.
func BlocksNode(out NodeOutput, nodeID string) bool {
	blocked, resumeTime, ok := AsHumanInterventionOutput(out)
	if !ok || resumeTime != nil {
		return false
	}
	for _, id := range blocked {
		if id == nodeID {
			return true
		}
	}
	return false
}
