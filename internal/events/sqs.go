// Where: cli/internal/events/sqs.go
// What: SQS queue event source mapping compilation.
// Why: Wire queue consumption with least-privilege receive grants.
package events

import (
	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/iam"
	"github.com/flintfn/flint/cli/internal/naming"
)

type sqsCompiler struct{}

func (sqsCompiler) Kind() model.EventKind { return model.KindSQS }

func (sqsCompiler) Validate(in Input) error {
	cfg := in.Binding.SQS
	if cfg == nil {
		return errcode.NewConfiguration(errcode.MissingEventField, "sqs",
			"sqs event on function %s has no configuration", in.Function.Name)
	}
	if cfg.ARN == nil || cfg.ARN == "" {
		return errcode.NewConfiguration(errcode.MissingEventField, "sqs.arn",
			"sqs event on function %s requires the queue arn", in.Function.Name)
	}
	return nil
}

// Compile emits one event source mapping per binding. Batch and window
// values pass through uninterpreted; the provider validates its own bounds.
func (c sqsCompiler) Compile(in Input) (Result, error) {
	if err := c.Validate(in); err != nil {
		return Result{}, err
	}
	cfg := in.Binding.SQS
	graph := cfn.NewGraph()

	props := map[string]any{
		"EventSourceArn": cfg.ARN,
		"FunctionName":   cfn.GetAtt(in.FunctionLogicalID, "Arn"),
		"Enabled":        mappingEnabled(cfg.Enabled),
	}
	if cfg.BatchSize != nil {
		props["BatchSize"] = *cfg.BatchSize
	}
	if cfg.MaximumBatchingWindow != nil {
		props["MaximumBatchingWindowInSeconds"] = *cfg.MaximumBatchingWindow
	}
	if cfg.MaximumConcurrency != nil {
		props["ScalingConfig"] = map[string]any{"MaximumConcurrency": *cfg.MaximumConcurrency}
	}
	if cfg.FunctionResponseType != "" {
		props["FunctionResponseTypes"] = []any{cfg.FunctionResponseType}
	}
	if len(cfg.FilterPatterns) > 0 {
		props["FilterCriteria"] = filterCriteria(cfg.FilterPatterns)
	}

	mappingID := naming.EventSourceMappingLogicalID(in.Function.Name, "sqs", in.Index)
	if err := graph.AddResource(mappingID, "AWS::Lambda::EventSourceMapping", props, in.FunctionLogicalID); err != nil {
		return Result{}, err
	}

	return Result{
		Graph: graph,
		Requirements: []iam.PermissionRequirement{{
			Effect: iam.EffectAllow,
			Actions: []string{
				"sqs:ReceiveMessage",
				"sqs:DeleteMessage",
				"sqs:GetQueueAttributes",
			},
			Resources: []any{cfg.ARN},
		}},
	}, nil
}

// filterCriteria places declared filter patterns structurally, leaving the
// pattern expressions opaque.
func filterCriteria(patterns []map[string]any) map[string]any {
	filters := make([]any, 0, len(patterns))
	for _, pattern := range patterns {
		filters = append(filters, map[string]any{"Pattern": encodeFilterPattern(pattern)})
	}
	return map[string]any{"Filters": filters}
}

func encodeFilterPattern(pattern map[string]any) any {
	encoded, err := encodeInput(pattern)
	if err != nil {
		return pattern
	}
	return encoded
}

func mappingEnabled(enabled *bool) bool {
	if enabled == nil {
		return true
	}
	return *enabled
}
