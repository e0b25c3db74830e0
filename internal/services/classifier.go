package services

import (
	"bytes"
	"encoding/json"

	"github.com/deploymenttheory/go-findmy/internal/interfaces"
	"github.com/deploymenttheory/go-findmy/internal/parsers/propertylist"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

// Classifier decides whether a plaintext is a structured record or opaque bytes
type Classifier struct{}

// Ensure Classifier implements the PlaintextClassifier interface
var _ interfaces.PlaintextClassifier = (*Classifier)(nil)

// NewClassifier creates a new plaintext classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns ClassStructured for binary or XML property lists and JSON
// documents with a map or sequence root. Everything else, including empty input, is opaque.
func (c *Classifier) Classify(plaintext []byte) interfaces.Classified {
	if len(plaintext) == 0 {
		return interfaces.Classified{Class: types.ClassOpaque}
	}

	// Only binary and XML property lists count; the OpenStep text syntax
	// would also accept JSON and plain "a = b;" text
	if node, format, err := propertylist.Decode(plaintext); err == nil && types.IsContainer(node) &&
		(format == propertylist.FormatBinary || format == propertylist.FormatXML) {
		return interfaces.Classified{
			Class:        types.ClassStructured,
			Source:       types.SourcePlist,
			Record:       node,
			RecordFormat: format.String(),
		}
	}

	trimmed := bytes.TrimLeft(plaintext, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(plaintext) {
		return interfaces.Classified{
			Class:  types.ClassStructured,
			Source: types.SourceJSON,
		}
	}

	return interfaces.Classified{Class: types.ClassOpaque}
}
