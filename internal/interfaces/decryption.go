package interfaces

import (
	"context"

	"github.com/deploymenttheory/go-findmy/internal/types"
)

// KeyResolver provides methods for selecting key material from a key store
type KeyResolver interface {
	// Resolve returns the key record for targetID. The store is only read.
	Resolve(store types.Node, targetID string) (*types.ResolvedKey, error)
}

// PayloadDecoder provides methods for opening encrypted payloads
type PayloadDecoder interface {
	// Decode verifies and decrypts a nonce||ciphertext||tag payload. On any
	// failure it returns a nil plaintext.
	Decode(key [types.SymmetricKeySize]byte, payload []byte, associatedData []byte) ([]byte, error)

	// Seal produces a nonce||ciphertext||tag payload
	Seal(key [types.SymmetricKeySize]byte, nonce []byte, plaintext []byte, associatedData []byte) ([]byte, error)
}

// PlaintextClassifier provides methods for choosing an output representation
type PlaintextClassifier interface {
	// Classify never fails; unrecognised plaintext is opaque
	Classify(plaintext []byte) Classified
}

// Classified is the outcome of classifying a plaintext
type Classified struct {
	Class        types.Classification
	Source       types.RecordSource
	Record       types.Node
	RecordFormat string
}

// CacheFileProcessor provides methods for running the per-file pipeline
type CacheFileProcessor interface {
	// Process decrypts a decoded cache file with a key from store
	Process(cache types.Node, targetID string, store types.Node) (*types.DecryptedArtifact, error)

	// ProcessFile reads and decodes the cache file at path, then calls Process
	ProcessFile(path string, targetID string, store types.Node) (*types.DecryptedArtifact, error)
}

// ArtifactWriter provides methods for persisting decrypted artifacts
type ArtifactWriter interface {
	// Write stores the artifact of the cache file at sourcePath and returns the output path
	Write(ctx context.Context, sourcePath string, artifact *types.DecryptedArtifact) (string, error)
}
