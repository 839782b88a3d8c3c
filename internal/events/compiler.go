// Where: cli/internal/events/compiler.go
// What: Event compiler capability interface and static kind registry.
// Why: Dispatch on a tagged event kind instead of runtime type inspection.
package events

import (
	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/iam"
)

// Input carries everything one compiler needs for a single binding. Index is
// the 1-based position of the binding in the function's declared event list;
// it feeds naming and must match declaration order exactly.
type Input struct {
	Service           string
	Provider          model.ProviderConfig
	Function          model.FunctionSpec
	FunctionLogicalID string
	Binding           model.EventBinding
	Index             int
}

// Result is one binding's contribution to the stack. Requirements target the
// function execution role; HandlerRequirements target the custom-resource
// handler role and stay separate so the two roles never share statements.
type Result struct {
	Graph               *cfn.Graph
	Requirements        []iam.PermissionRequirement
	HandlerRequirements []iam.PermissionRequirement
}

// Compiler translates one declared event binding into resources and
// permission requirements. Compiling the same input twice must produce
// identical output.
type Compiler interface {
	Kind() model.EventKind
	Validate(in Input) error
	Compile(in Input) (Result, error)
}

var registry = map[model.EventKind]Compiler{
	model.KindEventBridge: eventBridgeCompiler{},
	model.KindSQS:         sqsCompiler{},
	model.KindStream:      streamCompiler{},
	model.KindHTTPAPI:     httpAPICompiler{},
	model.KindSNS:         snsCompiler{},
}

// ForKind returns the compiler registered for the given event kind. An
// unknown kind is a defect in binding construction, not a user error.
func ForKind(kind model.EventKind) (Compiler, error) {
	compiler, ok := registry[kind]
	if !ok {
		return nil, errcode.NewInternal(errcode.InternalUnknownEventKind,
			"no compiler registered for event kind %q", kind)
	}
	return compiler, nil
}

// Kinds returns the registered event kinds. Order is unspecified.
func Kinds() []model.EventKind {
	out := make([]model.EventKind, 0, len(registry))
	for kind := range registry {
		out = append(out, kind)
	}
	return out
}
