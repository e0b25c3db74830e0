package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/deploymenttheory/go-findmy/internal/interfaces"
	"github.com/deploymenttheory/go-findmy/internal/parsers/propertylist"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

// Output file suffixes appended to the cache file name
const (
	SuffixPlist  = ".decrypted.plist"
	SuffixJSON   = ".decrypted.json"
	SuffixBinary = ".decrypted.bin"
)

// FileArtifactWriter writes decrypted artifacts next to their cache files or
// into a single output directory
type FileArtifactWriter struct {
	outputDir string
}

// Ensure FileArtifactWriter implements the ArtifactWriter interface
var _ interfaces.ArtifactWriter = (*FileArtifactWriter)(nil)

// NewFileArtifactWriter creates a writer. An empty outputDir writes alongside
// each cache file.
func NewFileArtifactWriter(outputDir string) *FileArtifactWriter {
	return &FileArtifactWriter{outputDir: outputDir}
}

// OutputPath returns where the artifact of sourcePath is written
func (w *FileArtifactWriter) OutputPath(sourcePath string, artifact *types.DecryptedArtifact) string {
	dir := filepath.Dir(sourcePath)
	if w.outputDir != "" {
		dir = w.outputDir
	}
	return filepath.Join(dir, filepath.Base(sourcePath)+suffixFor(artifact))
}

// Write renders the artifact and stores it with owner-only permissions
func (w *FileArtifactWriter) Write(ctx context.Context, sourcePath string, artifact *types.DecryptedArtifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := Render(artifact)
	if err != nil {
		return "", err
	}

	out := w.OutputPath(sourcePath, artifact)
	if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	return out, nil
}

// Render returns the bytes written for an artifact: an XML property list for
// plist records, indented JSON for JSON records, the plaintext otherwise
func Render(artifact *types.DecryptedArtifact) ([]byte, error) {
	if artifact == nil {
		return nil, fmt.Errorf("nil artifact")
	}
	if artifact.Class != types.ClassStructured {
		return artifact.Plaintext, nil
	}

	switch artifact.Source {
	case types.SourcePlist:
		data, err := propertylist.Encode(artifact.Record, propertylist.FormatXML)
		if err != nil {
			return nil, fmt.Errorf("failed to encode record: %w", err)
		}
		return data, nil
	case types.SourceJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, artifact.Plaintext, "", "  "); err != nil {
			return nil, fmt.Errorf("failed to indent record: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	default:
		return artifact.Plaintext, nil
	}
}

func suffixFor(artifact *types.DecryptedArtifact) string {
	if artifact.Class == types.ClassStructured {
		switch artifact.Source {
		case types.SourcePlist:
			return SuffixPlist
		case types.SourceJSON:
			return SuffixJSON
		}
	}
	return SuffixBinary
}
