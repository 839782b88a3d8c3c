// Where: cli/internal/packaging/manifest.go
// What: Artifact manifest persistence.
// Why: Let deploy reuse packaged artifacts without re-zipping.
package packaging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestFileName is written next to the zips under the output directory.
const ManifestFileName = "artifacts.json"

// Manifest records the artifacts produced by one packaging pass.
type Manifest struct {
	Service   string             `json:"service"`
	Stage     string             `json:"stage"`
	Artifacts []FunctionArtifact `json:"artifacts"`
}

// Lookup returns the artifact packaged for the named function.
func (m Manifest) Lookup(functionName string) (Artifact, bool) {
	for _, entry := range m.Artifacts {
		if entry.FunctionName == functionName {
			return entry.Artifact, true
		}
	}
	return Artifact{}, false
}

// SaveManifest writes the manifest into outDir.
func SaveManifest(outDir string, manifest Manifest) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", outDir, err)
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact manifest: %w", err)
	}
	path := filepath.Join(outDir, ManifestFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write artifact manifest %s: %w", path, err)
	}
	return nil
}

// LoadManifest reads a manifest previously written by SaveManifest.
func LoadManifest(outDir string) (Manifest, error) {
	path := filepath.Join(outDir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read artifact manifest %s: %w", path, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode artifact manifest %s: %w", path, err)
	}
	return manifest, nil
}
