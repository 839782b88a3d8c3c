// Where: cli/internal/compile/functions.go
// What: Per-function resource compilation.
// Why: Emit the function, its log group, and its ARN output consistently.
package compile

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/naming"
)

// FunctionPhysicalName returns the deployed function name.
func FunctionPhysicalName(service *model.ServiceModel, functionName string) string {
	return fmt.Sprintf("%s-%s-%s", service.Service, service.Provider.Stage, functionName)
}

// DefaultArtifactKey returns the deterministic deployment-bucket key used
// when packaging has not supplied an explicit one.
func DefaultArtifactKey(service *model.ServiceModel, functionName string) string {
	return path.Join(service.Service, service.Provider.Stage, functionName+".zip")
}

// DeploymentBucketName returns the configured bucket name or the derived
// default. Must stay in sync with the default in the core stack template.
func DeploymentBucketName(service *model.ServiceModel) string {
	if name := service.Provider.DeploymentBucket.Name; name != "" {
		return name
	}
	name := strings.ToLower(fmt.Sprintf("%s-%s-deploys", service.Service, service.Provider.Stage))
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

func addFunctionResources(graph *cfn.Graph, service *model.ServiceModel, fn model.FunctionSpec, artifactKeys map[string]string) error {
	if fn.Handler != "" && fn.IsImage() {
		return errcode.NewConfiguration(errcode.FunctionPackagingConflict, "handler",
			"function %s declares both a handler and a container image", fn.Name)
	}
	if fn.Handler == "" && !fn.IsImage() {
		return errcode.NewConfiguration(errcode.FunctionPackagingMissing, "handler",
			"function %s declares neither a handler nor a container image", fn.Name)
	}

	functionID := naming.FunctionLogicalID(fn.Name)
	logGroupID := naming.LogGroupLogicalID(fn.Name)
	physicalName := FunctionPhysicalName(service, fn.Name)

	if err := graph.AddResource(logGroupID, "AWS::Logs::LogGroup", map[string]any{
		"LogGroupName": "/aws/lambda/" + physicalName,
	}); err != nil {
		return err
	}

	props := map[string]any{
		"FunctionName": physicalName,
		"MemorySize":   pickInt(fn.MemorySize, service.Provider.MemorySize),
		"Timeout":      pickInt(fn.Timeout, service.Provider.Timeout),
		"Role":         roleReference(service, fn),
	}

	deps := []string{logGroupID}
	if service.Provider.Role == "" && fn.Role == "" {
		deps = append(deps, naming.ExecutionRoleLogicalID)
	}

	if fn.IsImage() {
		props["PackageType"] = "Image"
		props["Code"] = map[string]any{"ImageUri": fn.Image.URI}
		if imageConfig := imageConfigMap(fn.Image); len(imageConfig) > 0 {
			props["ImageConfig"] = imageConfig
		}
	} else {
		props["Handler"] = fn.Handler
		props["Runtime"] = pickString(fn.Runtime, service.Provider.Runtime)
		key, ok := artifactKeys[fn.Name]
		if !ok {
			key = DefaultArtifactKey(service, fn.Name)
		}
		props["Code"] = map[string]any{
			"S3Bucket": cfn.Ref(naming.DeploymentBucketLogicalID),
			"S3Key":    key,
		}
		deps = append(deps, naming.DeploymentBucketLogicalID)
	}

	if env := mergedEnvironment(service.Provider.Environment, fn.Environment); len(env) > 0 {
		props["Environment"] = map[string]any{"Variables": env}
	}
	if vpc := pickVPC(fn.VPC, service.Provider.VPC); vpc != nil {
		props["VpcConfig"] = map[string]any{
			"SecurityGroupIds": toAnySlice(vpc.SecurityGroupIDs),
			"SubnetIds":        toAnySlice(vpc.SubnetIDs),
		}
	}
	if len(fn.Layers) > 0 {
		props["Layers"] = toAnySlice(fn.Layers)
	}
	if fn.KMSKeyARN != "" {
		props["KmsKeyArn"] = fn.KMSKeyARN
	}
	if fn.DeadLetterTargetARN != "" {
		props["DeadLetterConfig"] = map[string]any{"TargetArn": fn.DeadLetterTargetARN}
	}
	if fn.Description != "" {
		props["Description"] = fn.Description
	}

	if err := graph.AddResource(functionID, "AWS::Lambda::Function", props, deps...); err != nil {
		return err
	}

	return graph.AddOutput(naming.FunctionArnOutputName(fn.Name), cfn.GetAtt(functionID, "Arn"))
}

func roleReference(service *model.ServiceModel, fn model.FunctionSpec) any {
	if fn.Role != "" {
		return fn.Role
	}
	if service.Provider.Role != "" {
		return service.Provider.Role
	}
	return cfn.GetAtt(naming.ExecutionRoleLogicalID, "Arn")
}

func imageConfigMap(image *model.ImageConfig) map[string]any {
	out := map[string]any{}
	if len(image.Command) > 0 {
		out["Command"] = toAnySlice(image.Command)
	}
	if len(image.EntryPoint) > 0 {
		out["EntryPoint"] = toAnySlice(image.EntryPoint)
	}
	if image.WorkingDirectory != "" {
		out["WorkingDirectory"] = image.WorkingDirectory
	}
	return out
}

// mergedEnvironment overlays function variables on provider variables.
// Keys sort for deterministic serialization of the merged map.
func mergedEnvironment(base, overlay map[string]string) map[string]any {
	merged := map[string]string{}
	for key, val := range base {
		merged[key] = val
	}
	for key, val := range overlay {
		merged[key] = val
	}
	if len(merged) == 0 {
		return nil
	}
	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make(map[string]any, len(merged))
	for _, key := range keys {
		out[key] = merged[key]
	}
	return out
}

func pickInt(primary, fallback int) int {
	if primary > 0 {
		return primary
	}
	return fallback
}

func pickString(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}

func pickVPC(primary, fallback *model.VPCConfig) *model.VPCConfig {
	if primary != nil {
		return primary
	}
	return fallback
}

func toAnySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, value := range values {
		out = append(out, value)
	}
	return out
}
