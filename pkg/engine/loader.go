package engine

import (
	"fmt"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// LoadWorkflow normalizes a raw workflow definition: it hoists
// parent/child node groups into subworkflows stashed under the
// parent's config, filters top-level links so none cross a parent
// boundary, and validates the result. The returned workflow has no
// node with a non-null ParentID.
func LoadWorkflow(wf *models.Workflow) (*models.Workflow, error) {
	if err := wf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGraph, err)
	}

	childrenByParent := make(map[string][]*models.Node)
	childSet := make(map[string]struct{})
	for _, n := range wf.Nodes {
		if n.IsChild() {
			childrenByParent[*n.ParentID] = append(childrenByParent[*n.ParentID], n)
			childSet[n.ID] = struct{}{}
		}
	}

	topNodes := make([]*models.Node, 0, len(wf.Nodes))
	byID := make(map[string]*models.Node, len(wf.Nodes))
	for _, n := range wf.Nodes {
		byID[n.ID] = n
		if !n.IsChild() {
			topNodes = append(topNodes, n)
		}
	}

	for parentID, children := range childrenByParent {
		parent, ok := byID[parentID]
		if !ok {
			return nil, fmt.Errorf("%w: node %s has children but does not exist", ErrInvalidGraph, parentID)
		}

		childIDs := make(map[string]struct{}, len(children))
		clonedChildren := make([]*models.Node, 0, len(children))
		for _, c := range children {
			childIDs[c.ID] = struct{}{}
			clone := *c
			clone.ParentID = nil
			clonedChildren = append(clonedChildren, &clone)
		}

		var intraLinks []*models.Link
		for _, l := range wf.Links {
			_, srcChild := childIDs[l.SourceID]
			_, tgtChild := childIDs[l.TargetID]
			if srcChild && tgtChild {
				intraLinks = append(intraLinks, l)
			}
		}

		sub := &models.Workflow{
			ID:    parentID + "/subworkflow",
			Nodes: clonedChildren,
			Links: intraLinks,
		}

		updated := parent.WithConfigValue("subworkflow", sub)
		*parent = *updated
	}

	var topLinks []*models.Link
	for _, l := range wf.Links {
		_, srcChild := childSet[l.SourceID]
		_, tgtChild := childSet[l.TargetID]
		if srcChild || tgtChild {
			continue
		}
		topLinks = append(topLinks, l)
	}

	loaded := &models.Workflow{
		ID:          wf.ID,
		Name:        wf.Name,
		Description: wf.Description,
		Status:      wf.Status,
		Nodes:       topNodes,
		Links:       topLinks,
		TestInputs:  wf.TestInputs,
		Variables:   wf.Variables,
		Metadata:    wf.Metadata,
		Tags:        wf.Tags,
	}

	if err := validateLoaded(loaded); err != nil {
		return nil, err
	}

	return loaded, nil
}

// validateLoaded checks the invariants the scheduler depends on: every
// link resolves, router-sourced links carry a handle, exactly one
// top-level InputNode exists, and the graph contains no cycle.
func validateLoaded(wf *models.Workflow) error {
	byID := make(map[string]*models.Node, len(wf.Nodes))
	for _, n := range wf.Nodes {
		byID[n.ID] = n
	}

	for _, l := range wf.Links {
		src, ok := byID[l.SourceID]
		if !ok {
			return fmt.Errorf("%w: link source %s does not exist", ErrInvalidGraph, l.SourceID)
		}
		if _, ok := byID[l.TargetID]; !ok {
			return fmt.Errorf("%w: link target %s does not exist", ErrInvalidGraph, l.TargetID)
		}
		if src.Type == models.NodeTypeRouter && l.SourceHandle == "" {
			return fmt.Errorf("%w: link from router %s must name a source_handle", ErrInvalidGraph, l.SourceID)
		}
	}

	inputCount := 0
	for _, n := range wf.Nodes {
		if n.Type == models.NodeTypeInput {
			inputCount++
		}
	}
	if inputCount != 1 {
		return fmt.Errorf("%w: workflow must have exactly one top-level InputNode, found %d", ErrInvalidGraph, inputCount)
	}

	if cycleNode, found := findCycle(wf); found {
		return fmt.Errorf("%w: cycle detected at node %s", ErrInvalidGraph, cycleNode)
	}

	return nil
}

// findCycle runs a depth-first back-edge check over the node/link
// graph and reports the first node found on a cycle, if any.
func findCycle(wf *models.Workflow) (string, bool) {
	adjacency := make(map[string][]string, len(wf.Nodes))
	for _, l := range wf.Links {
		adjacency[l.SourceID] = append(adjacency[l.SourceID], l.TargetID)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(wf.Nodes))

	var visit func(id string) (string, bool)
	visit = func(id string) (string, bool) {
		state[id] = visiting
		for _, next := range adjacency[id] {
			switch state[next] {
			case visiting:
				return next, true
			case unvisited:
				if cycleNode, found := visit(next); found {
					return cycleNode, true
				}
			}
		}
		state[id] = done
		return "", false
	}

	for _, n := range wf.Nodes {
		if state[n.ID] == unvisited {
			if cycleNode, found := visit(n.ID); found {
				return cycleNode, true
			}
		}
	}
	return "", false
}

// ValidateReachability checks, for a restricted nodeIDs set passed to
// Run, that every transitive predecessor of the set is either in the
// set itself, an InputNode, or present in precomputedOutputs. Missing
// predecessors must fail loudly at validation time instead of
// dangling forever inside the scheduler.
func ValidateReachability(wf *models.Workflow, dependencies map[string]map[string]struct{}, nodeIDs []string, precomputedOutputs map[string]models.NodeOutput) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	byID := make(map[string]*models.Node, len(wf.Nodes))
	for _, n := range wf.Nodes {
		byID[n.ID] = n
	}

	requested := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		requested[id] = struct{}{}
	}

	visited := make(map[string]struct{})
	var walk func(id string) error
	walk = func(id string) error {
		if _, ok := visited[id]; ok {
			return nil
		}
		visited[id] = struct{}{}
		for dep := range dependencies[id] {
			if _, ok := requested[dep]; ok {
				continue
			}
			node, ok := byID[dep]
			if !ok {
				return fmt.Errorf("%w: predecessor %s of requested node %s does not exist", ErrInvalidGraph, dep, id)
			}
			if node.Type == models.NodeTypeInput {
				continue
			}
			if _, ok := precomputedOutputs[dep]; ok {
				continue
			}
			return fmt.Errorf("%w: predecessor %s of requested node %s is neither requested, an InputNode, nor precomputed", ErrInvalidGraph, dep, id)
		}
		return nil
	}

	for id := range requested {
		if err := walk(id); err != nil {
			return err
		}
	}
	return nil
}
