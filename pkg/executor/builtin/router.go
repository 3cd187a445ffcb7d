package builtin

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/nodeflow/nodeflow/pkg/executor"
	"github.com/nodeflow/nodeflow/pkg/models"
)

// RouterRoute is one entry of a RouterNode's config["routes"]: a
// named handle and the expr-lang condition (evaluated against
// `input`) that selects it. A route with an empty Condition is the
// catch-all default, taken only if no route's condition is true.
type RouterRoute struct {
	Handle    string `json:"handle"`
	Condition string `json:"condition"`
}

// RouterExecutor is the RouterNode implementation: it evaluates its
// configured routes in order and selects the first whose condition
// is true (or the first route with an empty condition, as a
// fallback), producing a models.RouterOutput that carries input under
// the selected handle and nil under every other handle. When no
// condition is true and no route has an empty condition, every handle
// is nil.
type RouterExecutor struct {
	*executor.BaseExecutor
}

// NewRouterExecutor creates a router node executor.
func NewRouterExecutor() *RouterExecutor {
	return &RouterExecutor{
		BaseExecutor: executor.NewBaseExecutor("router"),
	}
}

func parseRoutes(config map[string]any) ([]RouterRoute, error) {
	raw, ok := config["routes"].([]any)
	if !ok {
		return nil, fmt.Errorf("router: config.routes is required and must be a list")
	}
	routes := make([]RouterRoute, 0, len(raw))
	for _, r := range raw {
		rm, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("router: each route must be an object")
		}
		handle, _ := rm["handle"].(string)
		if handle == "" {
			return nil, fmt.Errorf("router: each route requires a non-empty handle")
		}
		condition, _ := rm["condition"].(string)
		routes = append(routes, RouterRoute{Handle: handle, Condition: condition})
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("router: config.routes must contain at least one route")
	}
	return routes, nil
}

// Validate checks that config.routes is a non-empty list of
// well-formed routes.
func (e *RouterExecutor) Validate(config map[string]any) error {
	_, err := parseRoutes(config)
	return err
}

// Execute evaluates each route's condition in turn and returns a
// RouterOutput carrying input under the first selected handle and nil
// under every other declared handle.
func (e *RouterExecutor) Execute(_ context.Context, config map[string]any, input any) (any, error) {
	routes, err := parseRoutes(config)
	if err != nil {
		return nil, err
	}

	env := map[string]any{"input": input}
	selected := -1
	for i, route := range routes {
		if route.Condition == "" {
			if selected == -1 {
				selected = i
			}
			continue
		}
		program, err := expr.Compile(route.Condition, expr.Env(env))
		if err != nil {
			return nil, fmt.Errorf("router: failed to compile condition for handle %q: %w", route.Handle, err)
		}
		result, err := expr.Run(program, env)
		if err != nil {
			return nil, fmt.Errorf("router: failed to evaluate condition for handle %q: %w", route.Handle, err)
		}
		matched, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("router: condition for handle %q did not evaluate to a boolean", route.Handle)
		}
		if matched {
			selected = i
			break
		}
	}

	handles := make(map[string]any, len(routes))
	for i, route := range routes {
		if i == selected {
			handles[route.Handle] = input
		} else {
			handles[route.Handle] = nil
		}
	}
	return models.NewRouterOutput(handles), nil
}
