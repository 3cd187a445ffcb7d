package engine

import (
	"context"
	"sync"

	"github.com/nodeflow/nodeflow/pkg/models"
)

// RunResult is one RunBatch entry: the output map and error (if any)
// from one Run call, paired with the input index it was submitted at.
type RunResult struct {
	Index   int
	RunID   string
	Outputs map[string]models.NodeOutput
	Err     error
}

// RunBatch runs the scheduler once per element of inputs, keeping at
// most batchSize runs in flight concurrently, and preserves submission
// order in the returned slice. No state is shared across runs beyond
// the immutable workflow definition and the Scheduler's own
// recorder/run-store/notifier wiring.
func (s *Scheduler) RunBatch(ctx context.Context, wf *models.Workflow, runIDFn func(index int) string, inputs []map[string]any, batchSize int) []*RunResult {
	if batchSize < 1 {
		batchSize = 1
	}

	results := make([]*RunResult, len(inputs))
	sem := make(chan struct{}, batchSize)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, in map[string]any) {
			defer wg.Done()
			defer func() { <-sem }()

			runID := ""
			if runIDFn != nil {
				runID = runIDFn(idx)
			}
			out, err := s.Run(ctx, wf, runID, in, nil)
			results[idx] = &RunResult{Index: idx, RunID: runID, Outputs: out, Err: err}
		}(i, input)
	}

	wg.Wait()
	return results
}
