// Where: cli/internal/packaging/patterns_test.go
// What: Tests for artifact membership resolution.
// Why: Pattern ordering and built-in excludes decide what ships.
package packaging

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestResolveFilesDefaultIncludesEverything(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/handler.js": "exports.handler = () => {}",
		"package.json":   "{}",
	})

	files, err := ResolveFiles(root, ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"package.json", "src/handler.js"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestResolveFilesExcludeAndReinclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/handler.js":    "x",
		"test/handler_test": "x",
		"test/fixture.json": "x",
	})

	files, err := ResolveFiles(root, ResolveOptions{
		Patterns: []string{"test/**", "!test/fixture.json"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"src/handler.js", "test/fixture.json"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestResolveFilesLaterPatternWins(t *testing.T) {
	root := writeTree(t, map[string]string{"notes.md": "x"})

	files, err := ResolveFiles(root, ResolveOptions{
		Patterns: []string{"*.md", "!notes.md", "notes.md"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("last pattern must win, got %v", files)
	}
}

func TestResolveFilesBuiltinExcludesAreLocked(t *testing.T) {
	root := writeTree(t, map[string]string{
		"flint.yml":      "service: svc",
		".git/HEAD":      "ref",
		".flint/cache":   "x",
		"src/handler.js": "x",
	})

	// Built-ins exclude before user patterns and cannot be re-included.
	files, err := ResolveFiles(root, ResolveOptions{
		Patterns: []string{"!flint.yml", "!.git/**"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"src/handler.js"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestResolveFilesDotenvToggle(t *testing.T) {
	root := writeTree(t, map[string]string{
		".env":           "SECRET=1",
		".env.local":     "SECRET=2",
		"src/handler.js": "x",
	})

	files, err := ResolveFiles(root, ResolveOptions{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("dotenv files ship by default, got %v", files)
	}

	files, err = ResolveFiles(root, ResolveOptions{ExcludeDotenv: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []string{"src/handler.js"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}
