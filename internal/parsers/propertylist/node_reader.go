package propertylist

import (
	"fmt"
	"os"
	"time"

	"howett.net/plist"

	"github.com/deploymenttheory/go-findmy/internal/types"
)

// Format is a property-list encoding
type Format int

const (
	FormatUnknown Format = iota
	FormatBinary
	FormatXML
	FormatOpenStep
	FormatGNUStep
)

// String returns the encoding name
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "Binary"
	case FormatXML:
		return "XML"
	case FormatOpenStep:
		return "OpenStep"
	case FormatGNUStep:
		return "GNUStep"
	default:
		return "Unknown"
	}
}

func fromLibraryFormat(format int) Format {
	switch format {
	case plist.BinaryFormat:
		return FormatBinary
	case plist.XMLFormat:
		return FormatXML
	case plist.OpenStepFormat:
		return FormatOpenStep
	case plist.GNUStepFormat:
		return FormatGNUStep
	default:
		return FormatUnknown
	}
}

func toLibraryFormat(format Format) (int, error) {
	switch format {
	case FormatBinary:
		return plist.BinaryFormat, nil
	case FormatXML:
		return plist.XMLFormat, nil
	case FormatOpenStep:
		return plist.OpenStepFormat, nil
	case FormatGNUStep:
		return plist.GNUStepFormat, nil
	default:
		return 0, fmt.Errorf("unsupported property list format: %d", format)
	}
}

// Decode decodes a property list in any supported encoding into a node tree
func Decode(data []byte) (types.Node, Format, error) {
	if len(data) == 0 {
		return nil, FormatUnknown, &types.FormatError{Reason: types.FormatMalformed, Detail: "empty property list"}
	}

	var raw any
	format, err := plist.Unmarshal(data, &raw)
	if err != nil {
		return nil, FormatUnknown, &types.FormatError{Reason: types.FormatMalformed, Detail: err.Error()}
	}

	node, err := FromValue(raw)
	if err != nil {
		return nil, FormatUnknown, err
	}

	return node, fromLibraryFormat(format), nil
}

// DecodeFile reads and decodes the property list at path
func DecodeFile(path string) (types.Node, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("failed to read property list: %w", err)
	}

	node, format, err := Decode(data)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return node, format, nil
}

// FromValue converts the generic values produced by the plist decoder into a node tree
func FromValue(v any) (types.Node, error) {
	switch val := v.(type) {
	case map[string]any:
		m := make(types.Map, len(val))
		for k, child := range val {
			node, err := FromValue(child)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = node
		}
		return m, nil
	case []any:
		seq := make(types.Sequence, len(val))
		for i, child := range val {
			node, err := FromValue(child)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			seq[i] = node
		}
		return seq, nil
	case string:
		return types.String(val), nil
	case []byte:
		return types.Bytes(val), nil
	case bool:
		return types.Bool(val), nil
	case time.Time:
		return types.Date(val), nil
	case int64:
		return types.Number{Type: types.NumberSigned, Signed: val}, nil
	case int:
		return types.Number{Type: types.NumberSigned, Signed: int64(val)}, nil
	case uint64:
		return types.Number{Type: types.NumberUnsigned, Unsigned: val}, nil
	case plist.UID:
		return types.UID(val), nil
	case float64:
		return types.Number{Type: types.NumberReal, Real: val}, nil
	case float32:
		return types.Number{Type: types.NumberReal, Real: float64(val)}, nil
	default:
		return nil, &types.FormatError{
			Reason: types.FormatMalformed,
			Detail: fmt.Sprintf("unsupported property list value of type %T", v),
		}
	}
}

// Encode renders a node tree as a property list. XML output is tab indented.
func Encode(node types.Node, format Format) ([]byte, error) {
	if node == nil {
		return nil, fmt.Errorf("cannot encode nil node")
	}

	libFormat, err := toLibraryFormat(format)
	if err != nil {
		return nil, err
	}

	value := ToValue(node)
	if format == FormatXML {
		return plist.MarshalIndent(value, libFormat, "\t")
	}
	return plist.Marshal(value, libFormat)
}

// ToValue converts a node tree back into the values the plist encoder expects.
// UIDs become plist.UID so keyed archives keep their object references.
func ToValue(n types.Node) any {
	switch v := n.(type) {
	case types.Map:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = ToValue(child)
		}
		return out
	case types.Sequence:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = ToValue(child)
		}
		return out
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Number:
		return v.Value()
	case types.Bool:
		return bool(v)
	case types.Date:
		return time.Time(v)
	case types.UID:
		return plist.UID(v)
	default:
		return nil
	}
}
