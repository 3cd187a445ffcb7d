package builtin

import (
	"context"
	"time"

	"github.com/nodeflow/nodeflow/pkg/executor"
	"github.com/nodeflow/nodeflow/pkg/models"
)

// HumanInterventionExecutor is the HumanInterventionNode
// implementation. Its config carries:
//   - blocked_nodes: []any of node ids this node parks while paused
//   - approved: bool, flipped externally (e.g. by an approval API)
//     once a human has acted
//
// While not approved, Execute raises a *models.PauseSignal carrying a
// HumanInterventionOutput with a nil ResumeTime. The scheduler
// converts this into a normal PAUSED record rather than a failure.
// Once approved, Execute returns the same output shape with a
// non-nil ResumeTime, and downstream nodes stop being gated.
type HumanInterventionExecutor struct {
	*executor.BaseExecutor
}

// NewHumanInterventionExecutor creates a human intervention executor.
func NewHumanInterventionExecutor() *HumanInterventionExecutor {
	return &HumanInterventionExecutor{
		BaseExecutor: executor.NewBaseExecutor("human_intervention"),
	}
}

func blockedNodeList(config map[string]any) []string {
	raw, _ := config["blocked_nodes"].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (e *HumanInterventionExecutor) Execute(_ context.Context, config map[string]any, _ any) (any, error) {
	blocked := blockedNodeList(config)
	approved := e.GetBoolDefault(config, "approved", false)

	if !approved {
		out := models.NewHumanInterventionOutput(blocked, nil)
		return nil, models.NewPauseSignal(e.GetStringDefault(config, "node_id", ""), out)
	}

	resumeTime := time.Now().UTC()
	return models.NewHumanInterventionOutput(blocked, &resumeTime), nil
}
