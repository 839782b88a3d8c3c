// Where: cli/internal/events/sns.go
// What: SNS topic subscription compilation.
// Why: Subscribe functions to declared or pre-existing topics.
package events

import (
	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/naming"
)

type snsCompiler struct{}

func (snsCompiler) Kind() model.EventKind { return model.KindSNS }

func (snsCompiler) Validate(in Input) error {
	cfg := in.Binding.SNS
	if cfg == nil {
		return errcode.NewConfiguration(errcode.MissingEventField, "sns",
			"sns event on function %s has no configuration", in.Function.Name)
	}
	hasARN := cfg.TopicARN != nil && cfg.TopicARN != ""
	if hasARN && cfg.TopicName != "" {
		return errcode.NewConfiguration(errcode.ConflictingEventFields, "sns",
			"sns event on function %s declares both topicArn and topicName", in.Function.Name)
	}
	if !hasARN && cfg.TopicName == "" {
		return errcode.NewConfiguration(errcode.MissingEventField, "sns",
			"sns event on function %s requires topicArn or topicName", in.Function.Name)
	}
	return nil
}

// Compile subscribes the function to the topic. A topicName declares the
// topic in the stack; a topicArn subscribes to an existing one. The same
// declared topic name referenced by several bindings yields one resource.
func (c snsCompiler) Compile(in Input) (Result, error) {
	if err := c.Validate(in); err != nil {
		return Result{}, err
	}
	cfg := in.Binding.SNS
	graph := cfn.NewGraph()

	var topicRef any
	var subscriptionDeps []string
	if cfg.TopicName != "" {
		topicID := naming.SNSTopicLogicalID(cfg.TopicName)
		props := map[string]any{"TopicName": cfg.TopicName}
		if cfg.DisplayName != "" {
			props["DisplayName"] = cfg.DisplayName
		}
		if err := graph.AddResource(topicID, "AWS::SNS::Topic", props); err != nil {
			return Result{}, err
		}
		topicRef = cfn.Ref(topicID)
		subscriptionDeps = append(subscriptionDeps, topicID)
	} else {
		topicRef = cfg.TopicARN
	}

	subProps := map[string]any{
		"TopicArn": topicRef,
		"Protocol": "lambda",
		"Endpoint": cfn.GetAtt(in.FunctionLogicalID, "Arn"),
	}
	if len(cfg.FilterPolicy) > 0 {
		subProps["FilterPolicy"] = cfg.FilterPolicy
	}
	subscriptionID := naming.SNSSubscriptionLogicalID(in.Function.Name, in.Index)
	if err := graph.AddResource(subscriptionID, "AWS::SNS::Subscription", subProps,
		append(subscriptionDeps, in.FunctionLogicalID)...); err != nil {
		return Result{}, err
	}

	permissionID := naming.SNSPermissionLogicalID(in.Function.Name, in.Index)
	if err := graph.AddResource(permissionID, "AWS::Lambda::Permission", map[string]any{
		"FunctionName": cfn.GetAtt(in.FunctionLogicalID, "Arn"),
		"Action":       "lambda:InvokeFunction",
		"Principal":    "sns.amazonaws.com",
		"SourceArn":    topicRef,
	}, in.FunctionLogicalID); err != nil {
		return Result{}, err
	}

	return Result{Graph: graph}, nil
}
