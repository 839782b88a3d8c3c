// Where: cli/internal/cfn/graph.go
// What: Insertion-ordered resource graph accumulated by event compilers.
// Why: Guarantee deterministic templates and catch compiler defects early.
package cfn

import (
	"fmt"
	"reflect"

	"github.com/flintfn/flint/cli/internal/domain/errcode"
)

// Resource is one typed template resource record.
type Resource struct {
	Type       string
	Properties map[string]any
	DependsOn  []string
}

// Graph maps logical ids to resources, preserving insertion order, plus an
// ordered output mapping. One compilation pass owns exactly one Graph; there
// are no concurrent writers.
type Graph struct {
	resourceOrder []string
	resources     map[string]Resource
	outputOrder   []string
	outputs       map[string]any
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		resources: map[string]Resource{},
		outputs:   map[string]any{},
	}
}

// AddResource records a resource under the given logical id. Re-adding an
// identical resource is permitted so several compilers may contribute a
// shared resource; conflicting properties are a compiler defect. DependsOn
// edges accumulate across calls and never replace earlier edges.
func (g *Graph) AddResource(id, resourceType string, properties map[string]any, dependsOn ...string) error {
	existing, ok := g.resources[id]
	if !ok {
		g.resourceOrder = append(g.resourceOrder, id)
		g.resources[id] = Resource{
			Type:       resourceType,
			Properties: properties,
			DependsOn:  appendUnique(nil, dependsOn...),
		}
		return nil
	}
	if existing.Type != resourceType || !reflect.DeepEqual(existing.Properties, properties) {
		return errcode.NewInternal(errcode.InternalDuplicateResource,
			"resource %s already defined with different type or properties", id)
	}
	existing.DependsOn = appendUnique(existing.DependsOn, dependsOn...)
	g.resources[id] = existing
	return nil
}

// AddOutput records an output value. Conflicting duplicate outputs are a
// compiler defect; identical re-adds are permitted.
func (g *Graph) AddOutput(name string, value any) error {
	existing, ok := g.outputs[name]
	if !ok {
		g.outputOrder = append(g.outputOrder, name)
		g.outputs[name] = value
		return nil
	}
	if !reflect.DeepEqual(existing, value) {
		return errcode.NewInternal(errcode.InternalDuplicateOutput,
			"output %s already defined with a different value", name)
	}
	return nil
}

// Merge folds another graph into this one, resource by resource, with the
// same duplicate semantics as AddResource and AddOutput.
func (g *Graph) Merge(other *Graph) error {
	if other == nil {
		return nil
	}
	for _, id := range other.resourceOrder {
		res := other.resources[id]
		if err := g.AddResource(id, res.Type, res.Properties, res.DependsOn...); err != nil {
			return err
		}
	}
	for _, name := range other.outputOrder {
		if err := g.AddOutput(name, other.outputs[name]); err != nil {
			return err
		}
	}
	return nil
}

// Resource returns the resource stored under id.
func (g *Graph) Resource(id string) (Resource, bool) {
	res, ok := g.resources[id]
	return res, ok
}

// ResourceIDs returns logical ids in insertion order.
func (g *Graph) ResourceIDs() []string {
	out := make([]string, len(g.resourceOrder))
	copy(out, g.resourceOrder)
	return out
}

// Output returns the output stored under name.
func (g *Graph) Output(name string) (any, bool) {
	value, ok := g.outputs[name]
	return value, ok
}

// OutputNames returns output names in insertion order.
func (g *Graph) OutputNames() []string {
	out := make([]string, len(g.outputOrder))
	copy(out, g.outputOrder)
	return out
}

// Len reports the number of resources in the graph.
func (g *Graph) Len() int { return len(g.resourceOrder) }

// Validate checks that every DependsOn edge resolves to a logical id present
// in the graph. A dangling edge is a compiler defect, never a user error.
func (g *Graph) Validate() error {
	for _, id := range g.resourceOrder {
		for _, dep := range g.resources[id].DependsOn {
			if _, ok := g.resources[dep]; !ok {
				return errcode.NewInternal(errcode.InternalDanglingDependency,
					"resource %s depends on %s which is not in the graph", id, dep)
			}
		}
	}
	return nil
}

func appendUnique(base []string, extra ...string) []string {
	for _, candidate := range extra {
		found := false
		for _, existing := range base {
			if existing == candidate {
				found = true
				break
			}
		}
		if !found {
			base = append(base, candidate)
		}
	}
	return base
}

// String implements fmt.Stringer for debug logging.
func (g *Graph) String() string {
	return fmt.Sprintf("cfn.Graph{resources: %d, outputs: %d}", len(g.resourceOrder), len(g.outputOrder))
}
