// Package builder provides fluent, type-safe workflow construction.
//
// The builder API offers a more ergonomic way to create workflows
// than manual struct initialization, with early validation and
// IDE autocomplete support.
//
// # Basic Usage
//
// Create a small approval workflow:
//
//	workflow := builder.NewWorkflow("Expense Approval",
//	    builder.WithAutoLayout(),
//	).AddNode(
//	    builder.NewInputNode("in", "Request"),
//	).AddNode(
//	    builder.NewHumanInterventionNode("approve", "Manager Approval", []string{"notify"}),
//	).AddNode(
//	    builder.NewOutputNode("notify", "Notify"),
//	).Connect("in", "approve").
//	    Connect("approve", "notify").
//	    MustBuild()
//
// # Node Types
//
// Engine-significant node types have dedicated constructors:
//
//   - NewInputNode(id, title, opts...)
//   - NewOutputNode(id, title, opts...)
//   - NewRouterNode(id, title, routes, opts...)
//   - NewCoalesceNode(id, title, opts...)
//   - NewHumanInterventionNode(id, title, blockedNodes, opts...)
//   - NewBestOfNNode(id, title, innerNodeType, n, opts...)
//
// Generic nodes, resolved through the executor registry by their own
// Type string, have convenience constructors for the built-in
// executors:
//
//   - NewConditionalNode(id, title, expression, opts...)
//   - NewMergeNode(id, title, strategy, opts...)
//   - NewHTMLCleanNode(id, title, opts...)
//   - NewCSVToJSONNode(id, title, opts...)
//
// Arbitrary registered executors can be reached with NewNode(id,
// nodeType, title, opts...) directly.
//
// # Connecting Nodes
//
// Use Connect to create links between nodes. Links out of a
// RouterNode must name the route they carry via FromHandle:
//
//	workflow := builder.NewWorkflow("Pipeline").
//	    AddNode(builder.NewInputNode("in", "Input")).
//	    AddNode(builder.NewRouterNode("route", "Route", routes)).
//	    AddNode(builder.NewOutputNode("ok", "OK")).
//	    AddNode(builder.NewOutputNode("fail", "Fail")).
//	    Connect("in", "route").
//	    Connect("route", "ok", builder.FromHandle("success")).
//	    Connect("route", "fail", builder.FromHandle("failure")).
//	    MustBuild()
//
// # Positioning
//
// Position nodes using several strategies:
//
// Absolute positioning:
//
//	builder.NewInputNode("n1", "Node 1", builder.WithPosition(100, 200))
//
// Grid layout:
//
//	builder.NewInputNode("n1", "Node 1", builder.GridPosition(0, 0))
//
// Auto-layout:
//
//	builder.NewWorkflow("My Workflow",
//	    builder.WithAutoLayout(),
//	).AddNode(...).AddNode(...).MustBuild()
//
// # Workflow Options
//
// Configure workflows with functional options:
//
//	workflow := builder.NewWorkflow("Production Workflow",
//	    builder.WithDescription("A production workflow"),
//	    builder.WithStatus(models.WorkflowStatusPublished),
//	    builder.WithTags("production", "critical"),
//	    builder.WithVariable("api_key", "secret"),
//	    builder.WithMetadata("author", "John Doe"),
//	    builder.WithAutoLayout(),
//	).AddNode(...).MustBuild()
//
// # Node Options
//
// Generic node options, usable on any constructor:
//   - WithNodeDescription(desc)
//   - WithPosition(x, y) / GridPosition(row, col)
//   - WithNodeMetadata(key, value)
//   - WithConfig(config) / WithConfigValue(key, value): escape hatch
//
// # Error Handling
//
// Use Build() for error handling:
//
//	workflow, err := builder.NewWorkflow("Test").
//	    AddNode(...).
//	    Build()
//	if err != nil {
//	    return err
//	}
//
// Or MustBuild() for tests and examples, which panics on error.
package builder
