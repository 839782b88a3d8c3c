// Where: cli/internal/packaging/zip_test.go
// What: Tests for deterministic zip creation and fingerprinting.
// Why: The artifact hash is the code-diff signal; it must be reproducible.
package packaging

import (
	"archive/zip"
	"path/filepath"
	"testing"
)

func TestWriteZipDeterministic(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/handler.js": "exports.handler = () => {}",
		"package.json":   "{}",
	})
	outDir := t.TempDir()
	files := []string{"package.json", "src/handler.js"}

	first, err := WriteZip(root, files, filepath.Join(outDir, "a.zip"))
	if err != nil {
		t.Fatalf("first zip: %v", err)
	}
	second, err := WriteZip(root, files, filepath.Join(outDir, "b.zip"))
	if err != nil {
		t.Fatalf("second zip: %v", err)
	}

	if first.Hash != second.Hash {
		t.Errorf("hashes differ: %s vs %s", first.Hash, second.Hash)
	}
	if first.SizeBytes != second.SizeBytes {
		t.Errorf("sizes differ: %d vs %d", first.SizeBytes, second.SizeBytes)
	}
}

func TestWriteZipEntries(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/handler.js": "x",
		"package.json":   "{}",
	})
	outPath := filepath.Join(t.TempDir(), "svc.zip")

	artifact, err := WriteZip(root, []string{"package.json", "src/handler.js"}, outPath)
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	if artifact.Path != outPath {
		t.Errorf("artifact path = %s", artifact.Path)
	}

	reader, err := zip.OpenReader(outPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer reader.Close()

	if len(reader.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(reader.File))
	}
	for _, entry := range reader.File {
		if !entry.Modified.Equal(zipEpoch) {
			t.Errorf("entry %s timestamp = %v, want fixed epoch", entry.Name, entry.Modified)
		}
		if mode := entry.Mode().Perm(); mode != 0o644 {
			t.Errorf("entry %s mode = %o", entry.Name, mode)
		}
	}
	if reader.File[0].Name != "package.json" {
		t.Errorf("entry order not preserved: %s first", reader.File[0].Name)
	}
}

func TestFingerprintFileMatchesWrittenZip(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "content"})
	outPath := filepath.Join(t.TempDir(), "svc.zip")

	written, err := WriteZip(root, []string{"a.txt"}, outPath)
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	reread, err := FingerprintFile(outPath)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if written.Hash != reread.Hash || written.SizeBytes != reread.SizeBytes {
		t.Errorf("fingerprint mismatch: %+v vs %+v", written, reread)
	}
}
