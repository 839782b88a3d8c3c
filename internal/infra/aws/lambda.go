// Where: cli/internal/infra/aws/lambda.go
// What: Lambda SDK adapter mapping to and from domain types.
// Why: Keep SDK request/response shapes out of the reconciliation logic.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/flintfn/flint/cli/internal/domain/model"
)

// LambdaClient adapts the Lambda SDK to the deployer's port.
type LambdaClient struct {
	client *lambda.Client
}

// GetFunction fetches the remote snapshot for one function.
func (c *LambdaClient) GetFunction(ctx context.Context, name string) (model.RemoteFunctionState, error) {
	if c.client == nil {
		return model.RemoteFunctionState{}, fmt.Errorf("lambda client is nil")
	}
	resp, err := c.client.GetFunction(ctx, &lambda.GetFunctionInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return model.RemoteFunctionState{}, err
	}
	state := remoteStateFromConfiguration(resp.Configuration)
	if resp.Code != nil {
		state.ImageURI = aws.ToString(resp.Code.ImageUri)
	}
	return state, nil
}

// UpdateFunctionCode pushes a new code artifact.
func (c *LambdaClient) UpdateFunctionCode(ctx context.Context, update model.CodeUpdate) error {
	if c.client == nil {
		return fmt.Errorf("lambda client is nil")
	}
	input := &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(update.FunctionName),
	}
	switch {
	case update.ImageURI != "":
		input.ImageUri = aws.String(update.ImageURI)
	case len(update.ZipFile) > 0:
		input.ZipFile = update.ZipFile
	default:
		input.S3Bucket = aws.String(update.S3Bucket)
		input.S3Key = aws.String(update.S3Key)
	}
	_, err := c.client.UpdateFunctionCode(ctx, input)
	return err
}

// UpdateFunctionConfiguration pushes only the changed configuration fields.
func (c *LambdaClient) UpdateFunctionConfiguration(ctx context.Context, update model.ConfigUpdate) error {
	if c.client == nil {
		return fmt.Errorf("lambda client is nil")
	}
	input := &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(update.FunctionName),
	}
	if update.Handler != nil {
		input.Handler = update.Handler
	}
	if update.Runtime != nil {
		input.Runtime = types.Runtime(*update.Runtime)
	}
	if update.MemorySize != nil {
		input.MemorySize = aws.Int32(int32(*update.MemorySize))
	}
	if update.Timeout != nil {
		input.Timeout = aws.Int32(int32(*update.Timeout))
	}
	if update.Role != nil {
		input.Role = update.Role
	}
	if update.Description != nil {
		input.Description = update.Description
	}
	if update.KMSKeyARN != nil {
		input.KMSKeyArn = update.KMSKeyARN
	}
	if update.DeadLetterTargetARN != nil {
		input.DeadLetterConfig = &types.DeadLetterConfig{TargetArn: update.DeadLetterTargetARN}
	}
	if update.ImageConfig != nil {
		imageConfig := &types.ImageConfig{
			Command:    update.ImageConfig.Command,
			EntryPoint: update.ImageConfig.EntryPoint,
		}
		if update.ImageConfig.WorkingDirectory != "" {
			imageConfig.WorkingDirectory = aws.String(update.ImageConfig.WorkingDirectory)
		}
		input.ImageConfig = imageConfig
	}
	if update.Environment != nil {
		input.Environment = &types.Environment{Variables: update.Environment}
	}
	if update.Layers != nil {
		input.Layers = update.Layers
	}
	if update.SubnetIDs != nil || update.SecurityGroupIDs != nil {
		input.VpcConfig = &types.VpcConfig{
			SubnetIds:        update.SubnetIDs,
			SecurityGroupIds: update.SecurityGroupIDs,
		}
	}
	_, err := c.client.UpdateFunctionConfiguration(ctx, input)
	return err
}

func remoteStateFromConfiguration(cfg *types.FunctionConfiguration) model.RemoteFunctionState {
	if cfg == nil {
		return model.RemoteFunctionState{}
	}
	state := model.RemoteFunctionState{
		CodeSha256:  aws.ToString(cfg.CodeSha256),
		PackageType: string(cfg.PackageType),
		Handler:     aws.ToString(cfg.Handler),
		Runtime:     string(cfg.Runtime),
		Role:        aws.ToString(cfg.Role),
		Description: aws.ToString(cfg.Description),
		KMSKeyARN:   aws.ToString(cfg.KMSKeyArn),
		MemorySize:  int(aws.ToInt32(cfg.MemorySize)),
		Timeout:     int(aws.ToInt32(cfg.Timeout)),
	}
	if state.PackageType == "" {
		state.PackageType = model.PackageTypeZip
	}
	if cfg.DeadLetterConfig != nil {
		state.DeadLetterTargetARN = aws.ToString(cfg.DeadLetterConfig.TargetArn)
	}
	if cfg.ImageConfigResponse != nil && cfg.ImageConfigResponse.ImageConfig != nil {
		image := cfg.ImageConfigResponse.ImageConfig
		state.ImageCommand = image.Command
		state.ImageEntryPoint = image.EntryPoint
		state.ImageWorkingDirectory = aws.ToString(image.WorkingDirectory)
	}
	if cfg.Environment != nil {
		state.Environment = cfg.Environment.Variables
	}
	for _, layer := range cfg.Layers {
		state.Layers = append(state.Layers, aws.ToString(layer.Arn))
	}
	if cfg.VpcConfig != nil {
		state.SubnetIDs = cfg.VpcConfig.SubnetIds
		state.SecurityGroupIDs = cfg.VpcConfig.SecurityGroupIds
	}
	return state
}
