package builtin

import (
	"github.com/nodeflow/nodeflow/pkg/executor"
	"github.com/nodeflow/nodeflow/pkg/models"
)

// RegisterAll wires every built-in executor into manager: the six
// engine-significant node types the scheduler treats specially, plus
// the open-ended generic executors (conditional, merge, html_clean,
// csv_to_json) resolved by a Generic node's own Type string.
func RegisterAll(manager executor.Manager) {
	manager.Register(string(models.NodeTypeInput), NewInputExecutor())
	manager.Register(string(models.NodeTypeOutput), NewOutputExecutor())
	manager.Register(string(models.NodeTypeRouter), NewRouterExecutor())
	manager.Register(string(models.NodeTypeCoalesce), NewCoalesceExecutor())
	manager.Register(string(models.NodeTypeHumanIntervention), NewHumanInterventionExecutor())
	manager.Register(string(models.NodeTypeBestOfN), NewBestOfNExecutor(manager))

	manager.Register("conditional", NewConditionalExecutor())
	manager.Register("merge", NewMergeExecutor())
	manager.Register("html_clean", NewHTMLCleanExecutor())
	manager.Register("csv_to_json", NewCSVToJSONExecutor())
}
