package types

// Key store records
// A key store is a property list whose root map is either a single key record
// or a map of identifiers (cache group or file names) to key records, nested at
// most two levels deep.

const (
	// KeyFieldSymmetric holds the ChaCha20-Poly1305 key of a record
	KeyFieldSymmetric = "symmetricKey"

	// KeyFieldPrivate holds the private key of a record
	KeyFieldPrivate = "privateKey"

	// KeyFieldWrapped and KeyFieldData describe the {key: {data: ...}} encoding
	// of a symmetric key
	KeyFieldWrapped = "key"
	KeyFieldData    = "data"

	// SymmetricKeySize is the only accepted symmetric key length in bytes
	SymmetricKeySize = 32

	// FlatKeyIdentifier names the single record of a flat key store
	FlatKeyIdentifier = "*"
)

// ResolvedKey is the key material selected for one target identifier.
type ResolvedKey struct {
	// TargetID is the identifier the key was resolved for
	TargetID string

	// Path is where the record was found inside the key store; empty for a flat store
	Path []string

	// Symmetric is the 32-byte ChaCha20-Poly1305 key
	Symmetric [SymmetricKeySize]byte

	// Private is the optional private key, nil when the record has none
	Private []byte
}

// Flat reports whether the key came from a flat key store
func (k *ResolvedKey) Flat() bool {
	return len(k.Path) == 0
}

// Wipe zeroes the key material held by k. The key store the key was resolved
// from is unaffected.
func (k *ResolvedKey) Wipe() {
	for i := range k.Symmetric {
		k.Symmetric[i] = 0
	}
	for i := range k.Private {
		k.Private[i] = 0
	}
}

// KeyRecordInfo describes one resolvable record without exposing key bytes.
type KeyRecordInfo struct {
	Identifier         string   `json:"identifier" yaml:"identifier"`
	Path               []string `json:"path,omitempty" yaml:"path,omitempty"`
	SymmetricKeyLength int      `json:"symmetric_key_length" yaml:"symmetric_key_length"`
	HasPrivateKey      bool     `json:"has_private_key" yaml:"has_private_key"`
	Status             string   `json:"status" yaml:"status"`
}
