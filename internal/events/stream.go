// Where: cli/internal/events/stream.go
// What: Kinesis/DynamoDB stream event source mapping compilation.
// Why: Wire stream consumption with the provider's documented defaults.
package events

import (
	"strings"

	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/iam"
	"github.com/flintfn/flint/cli/internal/naming"
)

// DefaultStartingPosition matches the provider's documented default for
// stream event sources. It applies whenever the binding leaves the field
// unset, not only on request.
const DefaultStartingPosition = "TRIM_HORIZON"

type streamCompiler struct{}

func (streamCompiler) Kind() model.EventKind { return model.KindStream }

func (streamCompiler) Validate(in Input) error {
	cfg := in.Binding.Stream
	if cfg == nil {
		return errcode.NewConfiguration(errcode.MissingEventField, "stream",
			"stream event on function %s has no configuration", in.Function.Name)
	}
	if cfg.ARN == nil || cfg.ARN == "" {
		return errcode.NewConfiguration(errcode.MissingEventField, "stream.arn",
			"stream event on function %s requires the stream arn", in.Function.Name)
	}
	if cfg.Type != "" && cfg.Type != "kinesis" && cfg.Type != "dynamodb" {
		return errcode.NewConfiguration(errcode.InvalidEventConfig, "stream.type",
			"stream event on function %s has unsupported type %q", in.Function.Name, cfg.Type)
	}
	return nil
}

func (c streamCompiler) Compile(in Input) (Result, error) {
	if err := c.Validate(in); err != nil {
		return Result{}, err
	}
	cfg := in.Binding.Stream
	graph := cfn.NewGraph()

	startingPosition := cfg.StartingPosition
	if startingPosition == "" {
		startingPosition = DefaultStartingPosition
	}

	props := map[string]any{
		"EventSourceArn":   cfg.ARN,
		"FunctionName":     cfn.GetAtt(in.FunctionLogicalID, "Arn"),
		"StartingPosition": startingPosition,
		"Enabled":          mappingEnabled(cfg.Enabled),
	}
	if cfg.BatchSize != nil {
		props["BatchSize"] = *cfg.BatchSize
	}
	if cfg.MaximumRetryAttempts != nil {
		props["MaximumRetryAttempts"] = *cfg.MaximumRetryAttempts
	}
	if cfg.BisectBatchOnFunctionError != nil {
		props["BisectBatchOnFunctionError"] = *cfg.BisectBatchOnFunctionError
	}
	if cfg.ParallelizationFactor != nil {
		props["ParallelizationFactor"] = *cfg.ParallelizationFactor
	}

	mappingID := naming.EventSourceMappingLogicalID(in.Function.Name, "stream", in.Index)
	if err := graph.AddResource(mappingID, "AWS::Lambda::EventSourceMapping", props, in.FunctionLogicalID); err != nil {
		return Result{}, err
	}

	return Result{
		Graph:        graph,
		Requirements: []iam.PermissionRequirement{streamRequirement(cfg)},
	}, nil
}

func streamRequirement(cfg *model.StreamConfig) iam.PermissionRequirement {
	if streamType(cfg) == "dynamodb" {
		return iam.PermissionRequirement{
			Effect: iam.EffectAllow,
			Actions: []string{
				"dynamodb:GetRecords",
				"dynamodb:GetShardIterator",
				"dynamodb:DescribeStream",
				"dynamodb:ListStreams",
			},
			Resources: []any{cfg.ARN},
		}
	}
	return iam.PermissionRequirement{
		Effect: iam.EffectAllow,
		Actions: []string{
			"kinesis:GetRecords",
			"kinesis:GetShardIterator",
			"kinesis:DescribeStream",
			"kinesis:ListStreams",
		},
		Resources: []any{cfg.ARN},
	}
}

// streamType prefers the declared type, falling back to the ARN's service
// segment for plain string ARNs.
func streamType(cfg *model.StreamConfig) string {
	if cfg.Type != "" {
		return cfg.Type
	}
	if arn, ok := cfg.ARN.(string); ok && strings.Contains(arn, ":dynamodb:") {
		return "dynamodb"
	}
	return "kinesis"
}
