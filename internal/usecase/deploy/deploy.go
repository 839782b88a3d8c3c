// Where: cli/internal/usecase/deploy/deploy.go
// What: Per-function reconciliation state machine.
// Why: Decide code/config updates from remote state, never apply blindly.
package deploy

import (
	"context"
	"fmt"
	"os"

	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
)

// State names one step of the per-function reconciliation.
type State string

const (
	StateInitial        State = "Initial"
	StateCodeCompared   State = "CodeCompared"
	StateCodeUpdated    State = "CodeUpdated"
	StateCodeSkipped    State = "CodeSkipped"
	StateConfigCompared State = "ConfigCompared"
	StateConfigUpdated  State = "ConfigUpdated"
	StateConfigSkipped  State = "ConfigSkipped"
	StateDone           State = "Done"
)

// Outcome reports how one function's reconciliation resolved. States records
// the traversal in order, ending in Done on success.
type Outcome struct {
	Function      string
	CodeUpdated   bool
	ConfigUpdated bool
	States        []State
}

// Input describes one function to reconcile.
type Input struct {
	// FunctionName is the deployed (physical) name.
	FunctionName string
	// LocalHash is the packaged artifact's content hash, compared against the
	// remote code hash. Empty means no local artifact (nothing to compare).
	LocalHash    string
	ArtifactPath string
	S3Bucket     string
	S3Key        string
	Desired      DesiredConfig
	// Force updates code even when hashes match.
	Force bool
}

// FunctionDeployer reconciles one function at a time against the provider.
// Code resolves before configuration; the comparison always uses the remote
// state fetched before any update.
type FunctionDeployer struct {
	API      FunctionAPI
	Uploader ArtifactUploader
	Retry    RetryPolicy
	// IsNotFound recognizes the provider's never-deployed error so it can be
	// translated instead of surfaced raw.
	IsNotFound func(error) bool
	// Log receives progress lines; nil means silent.
	Log func(format string, args ...any)
}

// Deploy runs the state machine for one function.
func (d *FunctionDeployer) Deploy(ctx context.Context, in Input) (Outcome, error) {
	outcome := Outcome{Function: in.FunctionName, States: []State{StateInitial}}

	remote, err := d.API.GetFunction(ctx, in.FunctionName)
	if err != nil {
		if d.IsNotFound != nil && d.IsNotFound(err) {
			return outcome, &errcode.DeployError{
				Code:     errcode.DeployFunctionNeverDeployed,
				Function: in.FunctionName,
				Message:  "function has never been deployed; create the stack before deploying a single function",
				Cause:    err,
			}
		}
		return outcome, fmt.Errorf("fetch remote state for %s: %w", in.FunctionName, err)
	}
	outcome.States = append(outcome.States, StateCodeCompared)

	if in.Desired.PackageType != remote.PackageType {
		return outcome, &errcode.DeployError{
			Code:     errcode.DeployPackageTypeChange,
			Function: in.FunctionName,
			Message: fmt.Sprintf("declared package type %s but remote is %s; switching between handler and image is not supported",
				in.Desired.PackageType, remote.PackageType),
		}
	}

	if codeChanged(in, remote) {
		if err := d.updateCode(ctx, in); err != nil {
			return outcome, err
		}
		outcome.CodeUpdated = true
		outcome.States = append(outcome.States, StateCodeUpdated)
		d.logf("   code updated (%s)", in.FunctionName)
	} else {
		outcome.States = append(outcome.States, StateCodeSkipped)
		d.logf("   code unchanged, skipping (%s)", in.FunctionName)
	}

	outcome.States = append(outcome.States, StateConfigCompared)
	update := DiffConfig(in.Desired, remote)
	if update.Empty() {
		outcome.States = append(outcome.States, StateConfigSkipped)
		d.logf("   configuration unchanged, skipping (%s)", in.FunctionName)
	} else {
		update.FunctionName = in.FunctionName
		if err := d.withRetry(ctx, in.FunctionName, "update configuration", func() error {
			return d.API.UpdateFunctionConfiguration(ctx, update)
		}); err != nil {
			return outcome, err
		}
		outcome.ConfigUpdated = true
		outcome.States = append(outcome.States, StateConfigUpdated)
		d.logf("   configuration updated (%s)", in.FunctionName)
	}

	outcome.States = append(outcome.States, StateDone)
	return outcome, nil
}

// codeChanged compares local code against the remote snapshot. Zip functions
// compare artifact hashes; image functions compare the image reference.
func codeChanged(in Input, remote model.RemoteFunctionState) bool {
	if in.Force {
		return true
	}
	if in.Desired.PackageType == model.PackageTypeImage {
		return in.Desired.ImageURI != "" && in.Desired.ImageURI != remote.ImageURI
	}
	return in.LocalHash != "" && in.LocalHash != remote.CodeSha256
}

func (d *FunctionDeployer) updateCode(ctx context.Context, in Input) error {
	update := model.CodeUpdate{FunctionName: in.FunctionName}
	switch {
	case in.Desired.PackageType == model.PackageTypeImage:
		update.ImageURI = in.Desired.ImageURI
	case d.Uploader != nil && in.S3Bucket != "":
		if err := d.Uploader.UploadArtifact(ctx, in.S3Bucket, in.S3Key, in.ArtifactPath); err != nil {
			return fmt.Errorf("upload artifact for %s: %w", in.FunctionName, err)
		}
		update.S3Bucket = in.S3Bucket
		update.S3Key = in.S3Key
	default:
		data, err := readArtifact(in.ArtifactPath)
		if err != nil {
			return fmt.Errorf("read artifact for %s: %w", in.FunctionName, err)
		}
		update.ZipFile = data
	}
	return d.withRetry(ctx, in.FunctionName, "update code", func() error {
		return d.API.UpdateFunctionCode(ctx, update)
	})
}

// withRetry applies the transient-conflict policy and converts an exhausted
// retry budget into a coded error; non-retryable errors pass through.
func (d *FunctionDeployer) withRetry(ctx context.Context, function, action string, operation func() error) error {
	err := d.Retry.Do(ctx, operation)
	if err == nil {
		return nil
	}
	if d.Retry.Retryable != nil && d.Retry.Retryable(err) {
		return &errcode.DeployError{
			Code:     errcode.DeployRetryAttemptsExhausted,
			Function: function,
			Message:  fmt.Sprintf("%s still conflicting after %d attempts", action, d.Retry.MaxAttempts),
			Cause:    err,
		}
	}
	return fmt.Errorf("%s for %s: %w", action, function, err)
}

func (d *FunctionDeployer) logf(format string, args ...any) {
	if d.Log != nil {
		d.Log(format, args...)
	}
}

func readArtifact(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("no artifact path available")
	}
	return os.ReadFile(path)
}
