// Where: cli/internal/packaging/patterns.go
// What: Glob-pattern file membership resolution for artifacts.
// Why: Decide exactly which files each deployable zip carries.
package packaging

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// builtinExcludes are applied before any user pattern and can never be
// re-included: VCS metadata, the service's own configuration, and the
// tool's working directories.
var builtinExcludes = []string{
	".git/**",
	".git",
	".gitignore",
	".DS_Store",
	"flint.yml",
	"flint.yaml",
	".flint/**",
	".flint-plugins/**",
}

// dotenvExcludes additionally lock out environment-secret files when the
// provider's useDotenv toggle is enabled.
var dotenvExcludes = []string{
	".env",
	".env.*",
}

// ResolveOptions configures one membership resolution.
type ResolveOptions struct {
	// Patterns apply in declaration order: service-wide first, then the
	// function override. A plain pattern excludes matching paths; a "!"
	// prefix re-includes previously excluded ones. Later patterns win.
	Patterns      []string
	ExcludeDotenv bool
}

// ResolveFiles walks root and returns the slash-separated relative paths
// belonging to the artifact, sorted for deterministic zips.
func ResolveFiles(root string, opts ResolveOptions) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(fullPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, fullPath)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)

	locked := builtinExcludes
	if opts.ExcludeDotenv {
		locked = append(append([]string(nil), builtinExcludes...), dotenvExcludes...)
	}

	out := make([]string, 0, len(paths))
	for _, path := range paths {
		if matchesAny(locked, path) {
			continue
		}
		if includedByPatterns(opts.Patterns, path) {
			out = append(out, path)
		}
	}
	return out, nil
}

// includedByPatterns starts from full inclusion and applies each pattern in
// order; the last matching pattern decides.
func includedByPatterns(patterns []string, path string) bool {
	included := true
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		reinclude := strings.HasPrefix(pattern, "!")
		if reinclude {
			pattern = pattern[1:]
		}
		if matchPattern(pattern, path) {
			included = reinclude
		}
	}
	return included
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	matched, err := doublestar.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}
