// Where: cli/internal/app/app_test.go
// What: Tests for CLI dispatch and the package/print/deploy handlers.
// Why: Commands must be drivable end to end with injected fakes.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/usecase/deploy"
)

const testConfig = `service: orders
provider:
  stage: dev
functions:
  worker:
    handler: src/worker.handler
`

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "flint.yml"), []byte(testConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatalf("mkdir src: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "worker.js"), []byte("exports.handler = () => {}"), 0o644); err != nil {
		t.Fatalf("write handler: %v", err)
	}
	return dir
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	code := Run([]string{"version"}, Dependencies{Out: &out})
	if code != 0 {
		t.Fatalf("exit code = %d, output: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "flint version") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunLoadsDotenvFromWorkDir(t *testing.T) {
	dir := writeWorkspace(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("FLINT_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// Guarantees the variable is unset before Run and restored afterwards.
	t.Setenv("FLINT_TEST_DOTENV", "")
	os.Unsetenv("FLINT_TEST_DOTENV")

	var out bytes.Buffer
	if code := Run([]string{"version"}, Dependencies{WorkDir: dir, Out: &out}); code != 0 {
		t.Fatalf("exit code = %d, output: %s", code, out.String())
	}
	if got := os.Getenv("FLINT_TEST_DOTENV"); got != "loaded" {
		t.Errorf("FLINT_TEST_DOTENV = %q, want the value from the service root .env", got)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	if code := Run([]string{"frobnicate"}, Dependencies{Out: &out}); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
}

func TestRunPackageWritesTemplateAndManifest(t *testing.T) {
	dir := writeWorkspace(t)
	var out bytes.Buffer

	code := Run([]string{"package"}, Dependencies{WorkDir: dir, Out: &out})
	if code != 0 {
		t.Fatalf("exit code = %d, output: %s", code, out.String())
	}

	templatePath := filepath.Join(dir, ".flint", TemplateFileName)
	data, err := os.ReadFile(templatePath)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	var document map[string]any
	if err := json.Unmarshal(data, &document); err != nil {
		t.Fatalf("template is not valid JSON: %v", err)
	}
	if _, ok := document["Resources"]; !ok {
		t.Errorf("template has no Resources section")
	}

	if _, err := os.Stat(filepath.Join(dir, ".flint", "artifacts.json")); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".flint", "orders.zip")); err != nil {
		t.Errorf("shared artifact not written: %v", err)
	}
}

func TestRunPrintEmitsTemplate(t *testing.T) {
	dir := writeWorkspace(t)
	var out bytes.Buffer

	code := Run([]string{"print"}, Dependencies{WorkDir: dir, Out: &out})
	if code != 0 {
		t.Fatalf("exit code = %d, output: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "AWSTemplateFormatVersion") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	code = Run([]string{"print", "--format", "yaml"}, Dependencies{WorkDir: dir, Out: &out})
	if code != 0 {
		t.Fatalf("yaml exit code = %d", code)
	}
	if !strings.Contains(out.String(), "AWSTemplateFormatVersion:") {
		t.Errorf("yaml output = %q", out.String())
	}
}

func TestRunPrintStageOverride(t *testing.T) {
	dir := writeWorkspace(t)
	var out bytes.Buffer

	code := Run([]string{"print", "--stage", "prod"}, Dependencies{WorkDir: dir, Out: &out})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "orders-prod-worker") {
		t.Errorf("stage override not applied: %q", out.String())
	}
}

type stubAPI struct {
	remote model.RemoteFunctionState
}

func (s *stubAPI) GetFunction(ctx context.Context, name string) (model.RemoteFunctionState, error) {
	return s.remote, nil
}

func (s *stubAPI) UpdateFunctionCode(ctx context.Context, update model.CodeUpdate) error {
	return nil
}

func (s *stubAPI) UpdateFunctionConfiguration(ctx context.Context, update model.ConfigUpdate) error {
	return nil
}

func TestRunDeployAfterPackage(t *testing.T) {
	dir := writeWorkspace(t)
	var out bytes.Buffer

	if code := Run([]string{"package"}, Dependencies{WorkDir: dir, Out: &out}); code != 0 {
		t.Fatalf("package failed: %s", out.String())
	}

	api := &stubAPI{remote: model.RemoteFunctionState{
		PackageType: model.PackageTypeZip,
		Handler:     "src/worker.handler",
		Runtime:     model.DefaultRuntime,
		MemorySize:  model.DefaultMemorySize,
		Timeout:     model.DefaultTimeout,
	}}
	deps := Dependencies{
		WorkDir: dir,
		Out:     &out,
		Deploy: DeployDeps{
			NewFunctionAPI: func(ctx context.Context, region string) (deploy.FunctionAPI, error) {
				return api, nil
			},
		},
	}

	out.Reset()
	if code := Run([]string{"deploy"}, deps); code != 0 {
		t.Fatalf("deploy failed: %s", out.String())
	}
	// The stub reports a stale hash, so code updates; config matches.
	if !strings.Contains(out.String(), "code updated, configuration skipped") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunDeployWithoutPackage(t *testing.T) {
	dir := writeWorkspace(t)
	var out bytes.Buffer
	deps := Dependencies{
		WorkDir: dir,
		Out:     &out,
		Deploy: DeployDeps{
			NewFunctionAPI: func(ctx context.Context, region string) (deploy.FunctionAPI, error) {
				return &stubAPI{}, nil
			},
		},
	}

	if code := Run([]string{"deploy"}, deps); code != 1 {
		t.Fatalf("exit code = %d, output: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "run package first") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunDeployUnwired(t *testing.T) {
	dir := writeWorkspace(t)
	var out bytes.Buffer

	if code := Run([]string{"package"}, Dependencies{WorkDir: dir, Out: &out}); code != 0 {
		t.Fatalf("package failed: %s", out.String())
	}

	out.Reset()
	if code := Run([]string{"deploy"}, Dependencies{WorkDir: dir, Out: &out}); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out.String(), "not wired") {
		t.Errorf("output = %q", out.String())
	}
}
