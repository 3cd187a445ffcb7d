package builtin

import (
	"context"
	"errors"
	"testing"

	"github.com/nodeflow/nodeflow/pkg/executor"
)

// fakeSampler is a minimal inner executor for exercising BestOfNExecutor:
// it returns a fixed sequence of results, failing on indices in failAt.
type fakeSampler struct {
	*executor.BaseExecutor
	calls  int
	failAt map[int]bool
}

func newFakeSampler(failAt ...int) *fakeSampler {
	set := make(map[int]bool, len(failAt))
	for _, i := range failAt {
		set[i] = true
	}
	return &fakeSampler{BaseExecutor: executor.NewBaseExecutor("fake_sampler"), failAt: set}
}

func (f *fakeSampler) Execute(_ context.Context, _ map[string]any, input any) (any, error) {
	i := f.calls
	f.calls++
	if f.failAt[i] {
		return nil, errors.New("sample failed")
	}
	return map[string]any{"attempt": i, "input": input}, nil
}

func TestBestOfNExecutor_Execute_SelectsFirstSuccessful(t *testing.T) {
	manager := executor.NewRegistry()
	sampler := newFakeSampler(0, 1)
	manager.Register("fake_sampler", sampler)

	ex := NewBestOfNExecutor(manager)
	config := map[string]any{"inner_node_type": "fake_sampler", "n": 3}

	result, err := ex.Execute(context.Background(), config, "hi")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	out, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("Expected map[string]any result, got: %T", result)
	}
	if out["attempt"] != 2 {
		t.Errorf("Expected the third sample (index 2) to win after two failures, got: %v", out["attempt"])
	}
}

func TestBestOfNExecutor_Execute_AllSamplesFail(t *testing.T) {
	manager := executor.NewRegistry()
	manager.Register("fake_sampler", newFakeSampler(0, 1, 2))

	ex := NewBestOfNExecutor(manager)
	config := map[string]any{"inner_node_type": "fake_sampler", "n": 3}

	_, err := ex.Execute(context.Background(), config, "hi")
	if err == nil {
		t.Error("Expected an error when every sample fails")
	}
}

func TestBestOfNExecutor_Validate_RequiresInnerNodeType(t *testing.T) {
	manager := executor.NewRegistry()
	ex := NewBestOfNExecutor(manager)

	if err := ex.Validate(map[string]any{}); err == nil {
		t.Error("Expected an error when inner_node_type is missing")
	}
}

func TestBestOfNExecutor_Validate_RejectsUnknownInnerType(t *testing.T) {
	manager := executor.NewRegistry()
	ex := NewBestOfNExecutor(manager)

	err := ex.Validate(map[string]any{"inner_node_type": "does_not_exist"})
	if err == nil {
		t.Error("Expected an error for an unregistered inner node type")
	}
}

func TestBestOfNExecutor_Execute_DefaultsToOneSample(t *testing.T) {
	manager := executor.NewRegistry()
	manager.Register("fake_sampler", newFakeSampler())

	ex := NewBestOfNExecutor(manager)
	result, err := ex.Execute(context.Background(), map[string]any{"inner_node_type": "fake_sampler"}, "x")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	out := result.(map[string]any)
	if out["attempt"] != 0 {
		t.Errorf("Expected a single sample (attempt 0) when n is unset, got: %v", out["attempt"])
	}
}
