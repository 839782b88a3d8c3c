// Where: cli/internal/app/deploy_cmd.go
// What: deploy command handler.
// Why: Drive per-function reconciliation and report outcomes.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/flintfn/flint/cli/internal/infra/ui"
	"github.com/flintfn/flint/cli/internal/packaging"
	"github.com/flintfn/flint/cli/internal/usecase/deploy"
)

func runDeploy(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)
	ctx := context.Background()

	service, err := loadService(deps, cli.Config, cli.Deploy.Stage, cli.Deploy.Region)
	if err != nil {
		return exitWithError(out, err)
	}

	manifest, err := packaging.LoadManifest(outputDir(deps))
	if err != nil {
		return exitWithError(out, fmt.Errorf("load packaged artifacts (run package first): %w", err))
	}

	deployer, err := buildDeployer(ctx, deps, service.Provider.Region, out)
	if err != nil {
		return exitWithError(out, err)
	}
	driver := &deploy.ServiceDeployer{Deployer: deployer}

	if name := cli.Deploy.Function; name != "" {
		console.Header("🚀", fmt.Sprintf("Deploying %s / %s", service.Service, name))
		outcome, err := driver.DeployFunction(ctx, service, name, manifest, cli.Deploy.Force)
		if err != nil {
			return exitWithError(out, err)
		}
		reportOutcome(console, outcome)
		console.Success("Deploy complete")
		return 0
	}

	console.Header("🚀", fmt.Sprintf("Deploying %s (%s)", service.Service, service.Provider.Stage))
	results := driver.DeployService(ctx, service, manifest, cli.Deploy.Force)
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			console.Warn(fmt.Sprintf("%s: %v", result.Function, result.Err))
			continue
		}
		reportOutcome(console, result.Outcome)
	}
	if failed > 0 {
		return exitWithError(out, fmt.Errorf("%d of %d functions failed to deploy", failed, len(results)))
	}
	console.Success("Deploy complete")
	return 0
}

func buildDeployer(ctx context.Context, deps Dependencies, region string, out io.Writer) (*deploy.FunctionDeployer, error) {
	if deps.Deploy.NewFunctionAPI == nil {
		return nil, fmt.Errorf("deploy is not wired with a provider client")
	}
	api, err := deps.Deploy.NewFunctionAPI(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("build provider client: %w", err)
	}
	var uploader deploy.ArtifactUploader
	if deps.Deploy.NewUploader != nil {
		uploader, err = deps.Deploy.NewUploader(ctx, region)
		if err != nil {
			return nil, fmt.Errorf("build artifact uploader: %w", err)
		}
	}
	return &deploy.FunctionDeployer{
		API:        api,
		Uploader:   uploader,
		Retry:      deploy.DefaultRetryPolicy(deps.Deploy.IsTransientConflict),
		IsNotFound: deps.Deploy.IsNotFound,
		Log: func(format string, args ...any) {
			fmt.Fprintf(out, format+"\n", args...)
		},
	}, nil
}

func reportOutcome(console *ui.Console, outcome deploy.Outcome) {
	code := "skipped"
	if outcome.CodeUpdated {
		code = "updated"
	}
	config := "skipped"
	if outcome.ConfigUpdated {
		config = "updated"
	}
	console.Item(outcome.Function, fmt.Sprintf("code %s, configuration %s", code, config))
}
