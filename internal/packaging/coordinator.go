// Where: cli/internal/packaging/coordinator.go
// What: Per-function artifact assembly from package rules.
// Why: Decide shared vs individual packaging and produce the manifest.
package packaging

import (
	"fmt"
	"path/filepath"

	"github.com/flintfn/flint/cli/internal/domain/model"
)

// FunctionArtifact pairs a function with its deployable artifact.
type FunctionArtifact struct {
	FunctionName string   `json:"functionName"`
	Artifact     Artifact `json:"artifact"`
}

// Coordinator computes artifact membership for a whole service.
type Coordinator struct {
	// OutDir receives the produced zips; defaults to <root>/.flint.
	OutDir string
}

// Package produces one artifact per function. Functions without overrides
// share the service artifact; `individually` packaging, function-level
// patterns, or a pre-built `artifact` path bypass the shared computation
// entirely. Image functions carry no zip artifact and are skipped.
func (c Coordinator) Package(service *model.ServiceModel, root string) ([]FunctionArtifact, error) {
	outDir := c.OutDir
	if outDir == "" {
		outDir = filepath.Join(root, ".flint")
	}

	var shared *Artifact
	out := make([]FunctionArtifact, 0, len(service.Functions))
	for _, fn := range service.Functions {
		if fn.IsImage() {
			continue
		}

		rules := effectiveRules(service.Package, fn.Package)
		switch {
		case rules.Artifact != "":
			artifact, err := FingerprintFile(resolveArtifactPath(root, rules.Artifact))
			if err != nil {
				return nil, fmt.Errorf("package function %s: %w", fn.Name, err)
			}
			out = append(out, FunctionArtifact{FunctionName: fn.Name, Artifact: artifact})

		case rules.Individually:
			artifact, err := c.zipFor(service, root, outDir, fn.Name+".zip", rules.Patterns)
			if err != nil {
				return nil, fmt.Errorf("package function %s: %w", fn.Name, err)
			}
			out = append(out, FunctionArtifact{FunctionName: fn.Name, Artifact: artifact})

		default:
			if shared == nil {
				artifact, err := c.zipFor(service, root, outDir, service.Service+".zip", service.Package.Patterns)
				if err != nil {
					return nil, fmt.Errorf("package service artifact: %w", err)
				}
				shared = &artifact
			}
			out = append(out, FunctionArtifact{FunctionName: fn.Name, Artifact: *shared})
		}
	}
	return out, nil
}

func (c Coordinator) zipFor(service *model.ServiceModel, root, outDir, name string, patterns []string) (Artifact, error) {
	files, err := ResolveFiles(root, ResolveOptions{
		Patterns:      patterns,
		ExcludeDotenv: service.Provider.UseDotenv,
	})
	if err != nil {
		return Artifact{}, err
	}
	return WriteZip(root, files, filepath.Join(outDir, name))
}

// effectiveRules combines service rules with a function override. Patterns
// concatenate in declaration order so function patterns win on conflict;
// artifact and individually come from the override when present.
func effectiveRules(service model.PackageRules, fn *model.PackageRules) model.PackageRules {
	combined := model.PackageRules{
		Patterns:     append(append([]string(nil), service.Patterns...), patternsOf(fn)...),
		Individually: service.Individually,
	}
	if fn != nil {
		if fn.Artifact != "" {
			combined.Artifact = fn.Artifact
		}
		// Function-level patterns change the file set, so the function can no
		// longer share the service artifact.
		if fn.Individually || len(fn.Patterns) > 0 {
			combined.Individually = true
		}
	}
	return combined
}

func patternsOf(rules *model.PackageRules) []string {
	if rules == nil {
		return nil
	}
	return rules.Patterns
}

func resolveArtifactPath(root, artifact string) string {
	if filepath.IsAbs(artifact) {
		return artifact
	}
	return filepath.Join(root, artifact)
}
