// Where: cli/internal/usecase/deploy/service.go
// What: Service-wide deployment across all packaged functions.
// Why: Report per-function outcomes without aborting siblings on failure.
package deploy

import (
	"context"
	"fmt"

	"github.com/flintfn/flint/cli/internal/compile"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/packaging"
)

// FunctionResult pairs one function with its outcome or failure.
type FunctionResult struct {
	Function string
	Outcome  Outcome
	Err      error
}

// ServiceDeployer reconciles every packaged function in declaration order.
// Functions are strictly sequential; one failure is recorded and the
// remaining functions still deploy.
type ServiceDeployer struct {
	Deployer *FunctionDeployer
}

// DeployService reconciles every declared function using the packaging
// manifest for zip artifacts.
func (s *ServiceDeployer) DeployService(ctx context.Context, service *model.ServiceModel, manifest packaging.Manifest, force bool) []FunctionResult {
	results := make([]FunctionResult, 0, len(service.Functions))
	for _, fn := range service.Functions {
		outcome, err := s.deployOne(ctx, service, fn, manifest, force)
		results = append(results, FunctionResult{Function: fn.Name, Outcome: outcome, Err: err})
	}
	return results
}

// DeployFunction reconciles a single named function.
func (s *ServiceDeployer) DeployFunction(ctx context.Context, service *model.ServiceModel, functionName string, manifest packaging.Manifest, force bool) (Outcome, error) {
	fn, ok := service.Function(functionName)
	if !ok {
		return Outcome{}, fmt.Errorf("function %s is not declared in the service", functionName)
	}
	return s.deployOne(ctx, service, fn, manifest, force)
}

func (s *ServiceDeployer) deployOne(ctx context.Context, service *model.ServiceModel, fn model.FunctionSpec, manifest packaging.Manifest, force bool) (Outcome, error) {
	in := Input{
		FunctionName: compile.FunctionPhysicalName(service, fn.Name),
		Desired:      DesiredConfigFor(service, fn),
		Force:        force,
	}
	// Image functions carry no zip artifact; the image reference alone
	// drives the code comparison.
	if !fn.IsImage() {
		artifact, ok := manifest.Lookup(fn.Name)
		if !ok {
			return Outcome{}, fmt.Errorf("no packaged artifact for function %s; run package first", fn.Name)
		}
		in.LocalHash = artifact.Hash
		in.ArtifactPath = artifact.Path
		in.S3Bucket = compile.DeploymentBucketName(service)
		in.S3Key = compile.DefaultArtifactKey(service, fn.Name)
	}
	return s.Deployer.Deploy(ctx, in)
}
