// Where: cli/internal/events/eventbridge.go
// What: EventBridge rule compilation, native and custom-resource strategies.
// Why: Translate schedule/pattern bindings into rules, targets, and grants.
package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/iam"
	"github.com/flintfn/flint/cli/internal/naming"
)

// Runtime settings of the shared custom-resource handler. The handler code
// ships inside the custom-resources artifact uploaded next to function zips.
const (
	customResourceType       = "Custom::EventBridge"
	customHandlerArtifactKey = "custom-resources.zip"
	customHandlerEntrypoint  = "event-bridge/handler.main"
	customHandlerRuntime     = "nodejs20.x"
	customHandlerTimeout     = 60
	customHandlerMemory      = 256
)

type eventBridgeCompiler struct{}

func (eventBridgeCompiler) Kind() model.EventKind { return model.KindEventBridge }

// Validate rejects bindings that cannot compile under the selected strategy.
// The custom-resource strategy cannot resolve intrinsic bus references at
// resource-creation time, so those fail with a dedicated code instead of
// degrading silently.
func (eventBridgeCompiler) Validate(in Input) error {
	cfg := in.Binding.EventBridge
	if cfg == nil {
		return errcode.NewConfiguration(errcode.MissingEventField, "eventBridge",
			"eventBridge event on function %s has no configuration", in.Function.Name)
	}
	if cfg.Schedule == "" && len(cfg.Pattern) == 0 {
		return errcode.NewConfiguration(errcode.MissingEventField, "eventBridge",
			"eventBridge event on function %s requires schedule or pattern", in.Function.Name)
	}

	inputModes := 0
	if len(cfg.Input) > 0 {
		inputModes++
	}
	if cfg.InputPath != "" {
		inputModes++
	}
	if cfg.InputTransformer != nil {
		inputModes++
	}
	if inputModes > 1 {
		return errcode.NewConfiguration(errcode.ConflictingEventFields, "eventBridge",
			"input, inputPath and inputTransformer are mutually exclusive on function %s", in.Function.Name)
	}

	if !in.Provider.EventBridge.UseNativeResources() {
		if cfn.IsIntrinsic(cfg.EventBus) {
			return errcode.NewConfiguration(errcode.InvalidEventBusReference, "eventBridge.eventBus",
				"function %s references an event bus via an intrinsic function, which the custom-resource deployment mode cannot resolve", in.Function.Name)
		}
		if bus, ok := cfg.EventBus.(string); ok && strings.Contains(bus, "${") {
			return errcode.NewConfiguration(errcode.InvalidEventBusReference, "eventBridge.eventBus",
				"function %s references event bus %q with an unresolved expression under the custom-resource deployment mode", in.Function.Name, bus)
		}
	}
	return nil
}

// Compile picks exactly one strategy per binding: native CloudFormation
// resources, or a custom-resource record handled by the shared handler
// function. The two are never mixed for the same binding.
func (c eventBridgeCompiler) Compile(in Input) (Result, error) {
	if err := c.Validate(in); err != nil {
		return Result{}, err
	}
	if in.Provider.EventBridge.UseNativeResources() {
		return compileNativeRule(in)
	}
	return compileCustomResourceRule(in)
}

func compileNativeRule(in Input) (Result, error) {
	cfg := in.Binding.EventBridge
	graph := cfn.NewGraph()

	ruleID := naming.EventBridgeRuleLogicalID(in.Function.Name, in.Index)
	ruleName := naming.RuleName(in.Function.Name, in.Index)
	var ruleDeps []string

	props := map[string]any{
		"Name":  ruleName,
		"State": ruleState(cfg.Enabled),
	}
	if cfg.Schedule != "" {
		props["ScheduleExpression"] = cfg.Schedule
	}
	if len(cfg.Pattern) > 0 {
		props["EventPattern"] = cfg.Pattern
	}

	// A plain bus name declares the bus in the stack; ARNs and intrinsic
	// references pass through untouched. The default bus is implicit.
	if busName, declared := declaredBusName(cfg.EventBus); declared {
		busID := naming.EventBusLogicalID(busName)
		if err := graph.AddResource(busID, "AWS::Events::EventBus", map[string]any{
			"Name": busName,
		}); err != nil {
			return Result{}, err
		}
		props["EventBusName"] = cfn.Ref(busID)
		ruleDeps = append(ruleDeps, busID)
	} else if cfg.EventBus != nil {
		if bus := busPassthrough(cfg.EventBus); bus != nil {
			props["EventBusName"] = bus
		}
	}

	target, err := buildRuleTarget(in, cfg)
	if err != nil {
		return Result{}, err
	}
	props["Targets"] = []any{target}

	if err := graph.AddResource(ruleID, "AWS::Events::Rule", props, ruleDeps...); err != nil {
		return Result{}, err
	}

	permissionID := naming.EventBridgePermissionLogicalID(in.Function.Name, in.Index)
	if err := graph.AddResource(permissionID, "AWS::Lambda::Permission", map[string]any{
		"FunctionName": cfn.GetAtt(in.FunctionLogicalID, "Arn"),
		"Action":       "lambda:InvokeFunction",
		"Principal":    "events.amazonaws.com",
		"SourceArn":    cfn.GetAtt(ruleID, "Arn"),
	}, ruleID); err != nil {
		return Result{}, err
	}

	return Result{Graph: graph}, nil
}

func compileCustomResourceRule(in Input) (Result, error) {
	cfg := in.Binding.EventBridge
	graph := cfn.NewGraph()

	if err := addCustomResourceHandler(graph); err != nil {
		return Result{}, err
	}

	ruleName := naming.RuleName(in.Function.Name, in.Index)
	config := map[string]any{
		"RuleName": ruleName,
		"State":    ruleState(cfg.Enabled),
		"Target":   cfn.GetAtt(in.FunctionLogicalID, "Arn"),
	}
	if cfg.Schedule != "" {
		config["Schedule"] = cfg.Schedule
	}
	if len(cfg.Pattern) > 0 {
		config["Pattern"] = cfg.Pattern
	}
	busRef := ""
	if bus, ok := cfg.EventBus.(string); ok {
		busRef = strings.TrimSpace(bus)
	}
	busName, busDeclared := customBusName(busRef)
	if busRef != "" && busRef != "default" {
		config["EventBus"] = busRef
	}
	if len(cfg.Input) > 0 {
		encoded, err := encodeInput(cfg.Input)
		if err != nil {
			return Result{}, fmt.Errorf("encode eventBridge input for function %s: %w", in.Function.Name, err)
		}
		config["Input"] = encoded
	}
	if cfg.InputPath != "" {
		config["InputPath"] = cfg.InputPath
	}
	if cfg.InputTransformer != nil {
		config["InputTransformer"] = inputTransformerMap(cfg.InputTransformer)
	}

	recordID := naming.EventBridgeCustomResourceLogicalID(in.Function.Name, in.Index)
	if err := graph.AddResource(recordID, customResourceType, map[string]any{
		"ServiceToken":      cfn.GetAtt(naming.EventBridgeHandlerLogicalID, "Arn"),
		"EventBridgeConfig": config,
	}, naming.EventBridgeHandlerLogicalID, in.FunctionLogicalID); err != nil {
		return Result{}, err
	}

	handlerReqs := []iam.PermissionRequirement{
		{
			Effect: iam.EffectAllow,
			Actions: []string{
				"events:PutRule",
				"events:DeleteRule",
				"events:PutTargets",
				"events:RemoveTargets",
			},
			Resources: []any{ruleArn(ruleName, busName)},
		},
		{
			// The handler wires invoke permissions on arbitrary functions as
			// rules come and go; this is the documented wildcard exception
			// for infra-management actions.
			Effect: iam.EffectAllow,
			Actions: []string{
				"lambda:AddPermission",
				"lambda:RemovePermission",
			},
			Resources: []any{"*"},
		},
	}
	// Only a bus declared by plain name is created and deleted by the
	// handler; ARN references name a bus that already exists elsewhere.
	if busDeclared {
		handlerReqs = append(handlerReqs, iam.PermissionRequirement{
			Effect: iam.EffectAllow,
			Actions: []string{
				"events:CreateEventBus",
				"events:DeleteEventBus",
			},
			Resources: []any{busArn(busName)},
		})
	}

	return Result{Graph: graph, HandlerRequirements: handlerReqs}, nil
}

// addCustomResourceHandler contributes the shared handler function. Every
// custom-resource binding adds the identical definition, so repeated calls
// collapse onto one resource. The handler role is attached by the stack
// compiler once all handler requirements are aggregated.
func addCustomResourceHandler(graph *cfn.Graph) error {
	return graph.AddResource(naming.EventBridgeHandlerLogicalID, "AWS::Lambda::Function", map[string]any{
		"Code": map[string]any{
			"S3Bucket": cfn.Ref(naming.DeploymentBucketLogicalID),
			"S3Key":    customHandlerArtifactKey,
		},
		"FunctionName": cfn.Sub("${AWS::StackName}-custom-resource-event-bridge"),
		"Handler":      customHandlerEntrypoint,
		"MemorySize":   customHandlerMemory,
		"Runtime":      customHandlerRuntime,
		"Timeout":      customHandlerTimeout,
		"Role":         cfn.GetAtt(naming.EventBridgeHandlerRoleLogicalID, "Arn"),
	}, naming.EventBridgeHandlerRoleLogicalID)
}

func buildRuleTarget(in Input, cfg *model.EventBridgeConfig) (map[string]any, error) {
	target := map[string]any{
		"Arn": cfn.GetAtt(in.FunctionLogicalID, "Arn"),
		"Id":  naming.TruncateWithSuffix(in.Function.Name, "-target-"+strconv.Itoa(in.Index), naming.MaxRuleNameLength),
	}
	if len(cfg.Input) > 0 {
		encoded, err := encodeInput(cfg.Input)
		if err != nil {
			return nil, fmt.Errorf("encode eventBridge input for function %s: %w", in.Function.Name, err)
		}
		target["Input"] = encoded
	}
	if cfg.InputPath != "" {
		target["InputPath"] = cfg.InputPath
	}
	if cfg.InputTransformer != nil {
		target["InputTransformer"] = inputTransformerMap(cfg.InputTransformer)
	}
	if len(cfg.RetryPolicy) > 0 {
		target["RetryPolicy"] = cfg.RetryPolicy
	}
	if cfg.DeadLetterQueue != "" {
		target["DeadLetterConfig"] = map[string]any{"Arn": cfg.DeadLetterQueue}
	}
	return target, nil
}

// inputTransformerMap places the transform structurally without interpreting
// the template expression language.
func inputTransformerMap(t *model.InputTransformer) map[string]any {
	out := map[string]any{
		"InputTemplate": t.InputTemplate,
	}
	if len(t.InputPathsMap) > 0 {
		out["InputPathsMap"] = t.InputPathsMap
	}
	return out
}

func encodeInput(input map[string]any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func ruleState(enabled *bool) string {
	if enabled != nil && !*enabled {
		return "DISABLED"
	}
	return "ENABLED"
}

// declaredBusName reports whether the binding declares a bus the stack must
// create: a plain non-default name that is neither an ARN nor a reference.
func declaredBusName(bus any) (string, bool) {
	name, ok := bus.(string)
	if !ok {
		return "", false
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "default" || strings.HasPrefix(name, "arn:") {
		return "", false
	}
	return name, true
}

// customBusName reduces a bus reference to the bare name used in rule ARN
// construction, reporting whether the handler owns the bus lifecycle. ARN
// references keep only their resource segment and are never created or
// deleted by the handler.
func customBusName(busRef string) (string, bool) {
	if busRef == "" || busRef == "default" {
		return "", false
	}
	if strings.HasPrefix(busRef, "arn:") {
		if idx := strings.LastIndex(busRef, "/"); idx >= 0 {
			return busRef[idx+1:], false
		}
		return "", false
	}
	return busRef, true
}

func busPassthrough(bus any) any {
	if s, ok := bus.(string); ok {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" || trimmed == "default" {
			return nil
		}
		return trimmed
	}
	return bus
}

func ruleArn(ruleName, busName string) map[string]any {
	if busName != "" && busName != "default" {
		return cfn.Sub(fmt.Sprintf(
			"arn:${AWS::Partition}:events:${AWS::Region}:${AWS::AccountId}:rule/%s/%s", busName, ruleName))
	}
	return cfn.Sub(fmt.Sprintf(
		"arn:${AWS::Partition}:events:${AWS::Region}:${AWS::AccountId}:rule/%s", ruleName))
}

func busArn(busName string) map[string]any {
	return cfn.Sub(fmt.Sprintf(
		"arn:${AWS::Partition}:events:${AWS::Region}:${AWS::AccountId}:event-bus/%s", busName))
}
