// Where: cli/cmd/flint/cli.go
// What: CLI dependency wiring helpers.
// Why: Centralize construction for testability.
package main

import (
	"context"
	"os"

	"github.com/flintfn/flint/cli/internal/app"
	flintaws "github.com/flintfn/flint/cli/internal/infra/aws"
	"github.com/flintfn/flint/cli/internal/usecase/deploy"
)

var getwd = os.Getwd

// buildDependencies constructs the runtime dependencies for CLI execution.
// Provider clients are built lazily per command so compile-only commands
// never touch credentials.
func buildDependencies() (app.Dependencies, error) {
	workDir, err := getwd()
	if err != nil {
		return app.Dependencies{}, err
	}

	return app.Dependencies{
		WorkDir: workDir,
		Out:     os.Stdout,
		Deploy: app.DeployDeps{
			NewFunctionAPI: func(ctx context.Context, region string) (deploy.FunctionAPI, error) {
				return flintaws.ClientFactory{Region: region}.Lambda(ctx)
			},
			NewUploader: func(ctx context.Context, region string) (deploy.ArtifactUploader, error) {
				return flintaws.ClientFactory{Region: region}.S3(ctx)
			},
			IsNotFound:          flintaws.IsNotFound,
			IsTransientConflict: flintaws.IsTransientConflict,
		},
	}, nil
}
