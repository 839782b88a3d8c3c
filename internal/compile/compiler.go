// Where: cli/internal/compile/compiler.go
// What: Template compilation pass over the normalized service model.
// Why: Assemble skeleton, functions, events, and roles into one graph.
package compile

import (
	"fmt"
	"sort"

	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/events"
	"github.com/flintfn/flint/cli/internal/iam"
	"github.com/flintfn/flint/cli/internal/infra/render"
	"github.com/flintfn/flint/cli/internal/naming"
)

// Options tune one compilation pass.
type Options struct {
	// ArtifactKeys maps function names to deployment-bucket object keys.
	// Functions without an entry use the deterministic default key.
	ArtifactKeys map[string]string
}

// Compile runs one full compilation pass and returns the resource graph.
// The model is read-only; the returned graph is exclusively owned by the
// caller. Any error aborts the pass, no partial graph is returned.
func Compile(service *model.ServiceModel, opts Options) (*cfn.Graph, error) {
	graph := cfn.NewGraph()

	if err := addCoreStack(graph, service); err != nil {
		return nil, err
	}

	// Functions and events accumulate in a staging graph so the execution
	// role, whose statements depend on every compiled event, can still be
	// inserted ahead of them in serialization order.
	staging := cfn.NewGraph()
	roleAggregator := &iam.Aggregator{}
	handlerAggregator := &iam.Aggregator{}
	handlerRoleNeeded := false

	for _, fn := range service.Functions {
		if err := addFunctionResources(staging, service, fn, opts.ArtifactKeys); err != nil {
			return nil, err
		}
		roleAggregator.AddRequirement(logStreamRequirement(service, fn))

		for i, binding := range fn.Events {
			compiler, err := events.ForKind(binding.Kind)
			if err != nil {
				return nil, err
			}
			result, err := compiler.Compile(events.Input{
				Service:           service.Service,
				Provider:          service.Provider,
				Function:          fn,
				FunctionLogicalID: naming.FunctionLogicalID(fn.Name),
				Binding:           binding,
				Index:             i + 1,
			})
			if err != nil {
				return nil, fmt.Errorf("compile %s event %d of function %s: %w", binding.Kind, i+1, fn.Name, err)
			}
			if err := staging.Merge(result.Graph); err != nil {
				return nil, err
			}
			for _, req := range result.Requirements {
				roleAggregator.AddRequirement(req)
			}
			for _, req := range result.HandlerRequirements {
				handlerRoleNeeded = true
				handlerAggregator.AddRequirement(req)
			}
		}
	}

	if service.Provider.Role == "" && len(service.Functions) > 0 {
		if err := addExecutionRole(graph, service, roleAggregator.Finalize()); err != nil {
			return nil, err
		}
	}
	if handlerRoleNeeded {
		if err := addHandlerRole(graph, handlerAggregator.Finalize()); err != nil {
			return nil, err
		}
	}

	if err := graph.Merge(staging); err != nil {
		return nil, err
	}
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return graph, nil
}

// TemplateDescription is the description emitted on compiled templates.
func TemplateDescription(service *model.ServiceModel) string {
	return fmt.Sprintf("%s %s stack compiled by flint", service.Service, service.Provider.Stage)
}

func addCoreStack(graph *cfn.Graph, service *model.ServiceModel) error {
	core, err := render.RenderCoreStack(render.CoreStackData{
		Service:           service.Service,
		Stage:             service.Provider.Stage,
		BucketName:        service.Provider.DeploymentBucket.Name,
		BlockPublicAccess: service.Provider.DeploymentBucket.BlockPublicAccess,
	})
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(core.Resources))
	for id := range core.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		entry, ok := core.Resources[id].(map[string]any)
		if !ok {
			return fmt.Errorf("core stack resource %s has unexpected shape", id)
		}
		resourceType, _ := entry["Type"].(string)
		properties, _ := entry["Properties"].(map[string]any)
		var deps []string
		if rawDeps, ok := entry["DependsOn"].([]any); ok {
			for _, dep := range rawDeps {
				if s, ok := dep.(string); ok {
					deps = append(deps, s)
				}
			}
		}
		if err := graph.AddResource(id, resourceType, properties, deps...); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(core.Outputs))
	for name := range core.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := graph.AddOutput(name, core.Outputs[name]); err != nil {
			return err
		}
	}

	// User-declared raw resources merge after the skeleton, before functions.
	rawIDs := make([]string, 0, len(service.Resources))
	for id := range service.Resources {
		rawIDs = append(rawIDs, id)
	}
	sort.Strings(rawIDs)
	for _, id := range rawIDs {
		entry, ok := service.Resources[id].(map[string]any)
		if !ok {
			return fmt.Errorf("custom resource %s has unexpected shape", id)
		}
		resourceType, _ := entry["Type"].(string)
		properties, _ := entry["Properties"].(map[string]any)
		if err := graph.AddResource(id, resourceType, properties); err != nil {
			return err
		}
	}
	return nil
}

// logStreamRequirement grants each function's log group to the shared role.
// The aggregator folds every function's group into one statement.
func logStreamRequirement(service *model.ServiceModel, fn model.FunctionSpec) iam.PermissionRequirement {
	logGroupArn := cfn.Sub(fmt.Sprintf(
		"arn:${AWS::Partition}:logs:${AWS::Region}:${AWS::AccountId}:log-group:/aws/lambda/%s:*",
		FunctionPhysicalName(service, fn.Name)))
	return iam.PermissionRequirement{
		Effect: iam.EffectAllow,
		Actions: []string{
			"logs:CreateLogStream",
			"logs:CreateLogGroup",
			"logs:PutLogEvents",
		},
		Resources: []any{logGroupArn},
	}
}

func addExecutionRole(graph *cfn.Graph, service *model.ServiceModel, statements []iam.PolicyStatement) error {
	statementMaps := make([]any, 0, len(statements))
	for _, stmt := range statements {
		statementMaps = append(statementMaps, stmt.Map())
	}
	return graph.AddResource(naming.ExecutionRoleLogicalID, "AWS::IAM::Role", map[string]any{
		"AssumeRolePolicyDocument": assumeRolePolicy("lambda.amazonaws.com"),
		"Path":                     "/",
		"RoleName": cfn.Join("-", []any{
			service.Service,
			service.Provider.Stage,
			cfn.Ref("AWS::Region"),
			"lambdaRole",
		}),
		"Policies": []any{
			map[string]any{
				"PolicyName": cfn.Join("-", []any{service.Provider.Stage, service.Service, "lambda"}),
				"PolicyDocument": map[string]any{
					"Version":   "2012-10-17",
					"Statement": statementMaps,
				},
			},
		},
	})
}

// addHandlerRole attaches the aggregated infra-management grants to the
// custom-resource handler's dedicated role, kept apart from the execution
// role so functions never inherit infra-management permissions.
func addHandlerRole(graph *cfn.Graph, statements []iam.PolicyStatement) error {
	statementMaps := make([]any, 0, len(statements))
	for _, stmt := range statements {
		statementMaps = append(statementMaps, stmt.Map())
	}
	return graph.AddResource(naming.EventBridgeHandlerRoleLogicalID, "AWS::IAM::Role", map[string]any{
		"AssumeRolePolicyDocument": assumeRolePolicy("lambda.amazonaws.com"),
		"Path":                     "/",
		"Policies": []any{
			map[string]any{
				"PolicyName": "event-bridge-custom-resource",
				"PolicyDocument": map[string]any{
					"Version":   "2012-10-17",
					"Statement": statementMaps,
				},
			},
		},
	})
}

func assumeRolePolicy(principal string) map[string]any {
	return map[string]any{
		"Version": "2012-10-17",
		"Statement": []any{
			map[string]any{
				"Effect":    "Allow",
				"Principal": map[string]any{"Service": []any{principal}},
				"Action":    []any{"sts:AssumeRole"},
			},
		},
	}
}
