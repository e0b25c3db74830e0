package types

// Classification selects how a decrypted plaintext is rendered.
type Classification uint8

const (
	// ClassOpaque plaintext is written as raw bytes
	ClassOpaque Classification = iota

	// ClassStructured plaintext is a property list or JSON document with a
	// map or sequence root
	ClassStructured
)

// String returns the classification name
func (c Classification) String() string {
	if c == ClassStructured {
		return "structured"
	}
	return "opaque"
}

// RecordSource is the serialization a structured record was recognised as.
type RecordSource string

const (
	SourceNone  RecordSource = ""
	SourcePlist RecordSource = "plist"
	SourceJSON  RecordSource = "json"
)

// DecryptedArtifact is the verified plaintext of one cache file.
type DecryptedArtifact struct {
	// TargetID is the identifier the key was resolved for
	TargetID string

	// Plaintext is the authenticated, decrypted payload
	Plaintext []byte

	// Class is the output classification
	Class Classification

	// Source is set for structured records
	Source RecordSource

	// Record is the decoded property-list root of a plist record, nil otherwise
	Record Node

	// RecordFormat names the property-list encoding of a plist record (Binary, XML, ...)
	RecordFormat string
}

// PipelineState is the per-file processing state.
type PipelineState uint8

const (
	StateUnprocessed PipelineState = iota
	StateKeyResolved
	StateDecrypted
	StateClassified
	StateDone
	StateFailed
)

// String returns the state name
func (s PipelineState) String() string {
	switch s {
	case StateUnprocessed:
		return "unprocessed"
	case StateKeyResolved:
		return "key-resolved"
	case StateDecrypted:
		return "decrypted"
	case StateClassified:
		return "classified"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
