// Where: cli/internal/app/package_cmd.go
// What: package command handler.
// Why: Produce the template and artifact set deploy consumes.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/compile"
	"github.com/flintfn/flint/cli/internal/infra/ui"
	"github.com/flintfn/flint/cli/internal/packaging"
)

// TemplateFileName is written under the output directory by package.
const TemplateFileName = "cloudformation-template.json"

func runPackage(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)

	service, err := loadService(deps, cli.Config, cli.Package.Stage, cli.Package.Region)
	if err != nil {
		return exitWithError(out, err)
	}

	console.Header("📦", fmt.Sprintf("Packaging %s (%s)", service.Service, service.Provider.Stage))

	outDir := outputDir(deps)
	coordinator := packaging.Coordinator{OutDir: outDir}
	artifacts, err := coordinator.Package(service, deps.WorkDir)
	if err != nil {
		return exitWithError(out, err)
	}
	manifest := packaging.Manifest{
		Service:   service.Service,
		Stage:     service.Provider.Stage,
		Artifacts: artifacts,
	}
	if err := packaging.SaveManifest(outDir, manifest); err != nil {
		return exitWithError(out, err)
	}
	for _, entry := range artifacts {
		console.Item(entry.FunctionName, fmt.Sprintf("%s (%d bytes)", filepath.Base(entry.Artifact.Path), entry.Artifact.SizeBytes))
	}

	graph, err := compile.Compile(service, compile.Options{})
	if err != nil {
		return exitWithError(out, err)
	}
	document, err := cfn.MarshalTemplate(graph, compile.TemplateDescription(service))
	if err != nil {
		return exitWithError(out, err)
	}
	templatePath := filepath.Join(outDir, TemplateFileName)
	if err := os.WriteFile(templatePath, document, 0o644); err != nil {
		return exitWithError(out, fmt.Errorf("write template %s: %w", templatePath, err))
	}

	console.Item("template", templatePath)
	console.Success("Packaging complete")
	return 0
}
