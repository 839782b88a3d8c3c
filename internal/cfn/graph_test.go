// Where: cli/internal/cfn/graph_test.go
// What: Tests for the resource graph accumulator.
// Why: Duplicate and ordering semantics underpin template determinism.
package cfn

import (
	"errors"
	"reflect"
	"testing"

	"github.com/flintfn/flint/cli/internal/domain/errcode"
)

func TestAddResourceIdenticalReAdd(t *testing.T) {
	g := NewGraph()
	props := map[string]any{"Name": "shared"}
	if err := g.AddResource("Shared", "AWS::Events::EventBus", props); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := g.AddResource("Shared", "AWS::Events::EventBus", map[string]any{"Name": "shared"}); err != nil {
		t.Fatalf("identical re-add should be permitted: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("expected 1 resource, got %d", g.Len())
	}
}

func TestAddResourceConflict(t *testing.T) {
	g := NewGraph()
	if err := g.AddResource("R", "AWS::SNS::Topic", map[string]any{"TopicName": "a"}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := g.AddResource("R", "AWS::SNS::Topic", map[string]any{"TopicName": "b"})
	if err == nil {
		t.Fatalf("conflicting re-add must fail")
	}
	var internal *errcode.InternalError
	if !errors.As(err, &internal) || internal.Code != errcode.InternalDuplicateResource {
		t.Fatalf("expected duplicate-resource error, got %v", err)
	}
}

func TestDependsOnAccumulates(t *testing.T) {
	g := NewGraph()
	props := map[string]any{"K": "v"}
	if err := g.AddResource("R", "T", props, "A"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.AddResource("R", "T", map[string]any{"K": "v"}, "B", "A"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	res, _ := g.Resource("R")
	if !reflect.DeepEqual(res.DependsOn, []string{"A", "B"}) {
		t.Fatalf("DependsOn = %v, want [A B]", res.DependsOn)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"Zeta", "Alpha", "Mid"} {
		if err := g.AddResource(id, "T", nil); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if got := g.ResourceIDs(); !reflect.DeepEqual(got, []string{"Zeta", "Alpha", "Mid"}) {
		t.Fatalf("ResourceIDs = %v", got)
	}
}

func TestAddOutputConflict(t *testing.T) {
	g := NewGraph()
	if err := g.AddOutput("Out", "v1"); err != nil {
		t.Fatalf("first output: %v", err)
	}
	if err := g.AddOutput("Out", "v1"); err != nil {
		t.Fatalf("identical output re-add should be permitted: %v", err)
	}
	err := g.AddOutput("Out", "v2")
	var internal *errcode.InternalError
	if !errors.As(err, &internal) || internal.Code != errcode.InternalDuplicateOutput {
		t.Fatalf("expected duplicate-output error, got %v", err)
	}
}

func TestMerge(t *testing.T) {
	g := NewGraph()
	if err := g.AddResource("A", "T", map[string]any{"k": 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	other := NewGraph()
	if err := other.AddResource("A", "T", map[string]any{"k": 1}, "B"); err != nil {
		t.Fatalf("add to other: %v", err)
	}
	if err := other.AddResource("B", "T", nil); err != nil {
		t.Fatalf("add B: %v", err)
	}
	if err := other.AddOutput("Out", "v"); err != nil {
		t.Fatalf("add output: %v", err)
	}

	if err := g.Merge(other); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("expected 2 resources after merge, got %d", g.Len())
	}
	res, _ := g.Resource("A")
	if !reflect.DeepEqual(res.DependsOn, []string{"B"}) {
		t.Fatalf("merged DependsOn = %v", res.DependsOn)
	}
	if _, ok := g.Output("Out"); !ok {
		t.Fatalf("merged output missing")
	}
}

func TestValidateDanglingDependency(t *testing.T) {
	g := NewGraph()
	if err := g.AddResource("R", "T", nil, "Missing"); err != nil {
		t.Fatalf("add: %v", err)
	}
	err := g.Validate()
	var internal *errcode.InternalError
	if !errors.As(err, &internal) || internal.Code != errcode.InternalDanglingDependency {
		t.Fatalf("expected dangling-dependency error, got %v", err)
	}

	if err := g.AddResource("Missing", "T", nil); err != nil {
		t.Fatalf("add missing: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("validate after resolving: %v", err)
	}
}
