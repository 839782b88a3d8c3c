// Where: cli/internal/packaging/zip.go
// What: Deterministic zip creation and artifact fingerprinting.
// Why: Identical file sets must hash identically across packaging passes.
package packaging

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// zipEpoch is the fixed modification time stamped on every entry so the
// archive bytes depend only on file contents.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Artifact is one content-addressed deployable unit. It is computed fresh
// each packaging pass and never mutated afterwards.
type Artifact struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"sizeBytes"`
	// Hash is the base64-encoded SHA-256 of the archive bytes, matching the
	// encoding the provider reports for deployed code.
	Hash string `json:"hash"`
}

// WriteZip archives the given relative paths from root into outPath and
// returns the resulting artifact. Entries are written in the given order;
// callers pass sorted paths for deterministic output.
func WriteZip(root string, files []string, outPath string) (Artifact, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create artifact directory: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("create artifact %s: %w", outPath, err)
	}

	writer := zip.NewWriter(out)
	for _, rel := range files {
		if err := addZipEntry(writer, root, rel); err != nil {
			_ = writer.Close()
			_ = out.Close()
			return Artifact{}, err
		}
	}
	if err := writer.Close(); err != nil {
		_ = out.Close()
		return Artifact{}, fmt.Errorf("finalize artifact %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return Artifact{}, fmt.Errorf("close artifact %s: %w", outPath, err)
	}

	return FingerprintFile(outPath)
}

// FingerprintFile computes the artifact record for an existing file, used
// both for freshly written zips and for pre-built artifacts.
func FingerprintFile(path string) (Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, file)
	if err != nil {
		return Artifact{}, fmt.Errorf("hash artifact %s: %w", path, err)
	}
	return Artifact{
		Path:      path,
		SizeBytes: size,
		Hash:      base64.StdEncoding.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func addZipEntry(writer *zip.Writer, root, rel string) error {
	source, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("open %s: %w", rel, err)
	}
	defer source.Close()

	header := &zip.FileHeader{
		Name:     rel,
		Method:   zip.Deflate,
		Modified: zipEpoch,
	}
	header.SetMode(0o644)
	entry, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", rel, err)
	}
	if _, err := io.Copy(entry, source); err != nil {
		return fmt.Errorf("write zip entry %s: %w", rel, err)
	}
	return nil
}
