// Where: cli/internal/usecase/deploy/ports.go
// What: Provider ports consumed by the reconciliation driver.
// Why: Keep the state machine testable with in-memory fakes.
package deploy

import (
	"context"

	"github.com/flintfn/flint/cli/internal/domain/model"
)

// FunctionAPI is the provider surface the driver reconciles against. The AWS
// adapter satisfies it; tests substitute fakes.
type FunctionAPI interface {
	GetFunction(ctx context.Context, name string) (model.RemoteFunctionState, error)
	UpdateFunctionCode(ctx context.Context, update model.CodeUpdate) error
	UpdateFunctionConfiguration(ctx context.Context, update model.ConfigUpdate) error
}

// ArtifactUploader pushes a packaged artifact to the deployment bucket before
// the code update references it.
type ArtifactUploader interface {
	UploadArtifact(ctx context.Context, bucket, key, localPath string) error
}
