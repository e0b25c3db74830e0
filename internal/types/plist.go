// Package types holds the data model shared by the Find My cache decryption
// components: decoded property-list trees, key material, encrypted payloads,
// decrypted artifacts and the error taxonomy.
package types

import (
	"sort"
	"time"
)

// Property-list trees
// Key stores and cache files are property lists. Once decoded they are held as
// a closed set of node types so traversal code can switch on them exhaustively.

// NodeKind identifies the concrete type of a Node.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeMap
	NodeSequence
	NodeString
	NodeBytes
	NodeNumber
	NodeBool
	NodeDate
	NodeUID
)

// String returns a human-readable name for the node kind
func (k NodeKind) String() string {
	switch k {
	case NodeMap:
		return "Map"
	case NodeSequence:
		return "Sequence"
	case NodeString:
		return "String"
	case NodeBytes:
		return "Bytes"
	case NodeNumber:
		return "Number"
	case NodeBool:
		return "Bool"
	case NodeDate:
		return "Date"
	case NodeUID:
		return "UID"
	default:
		return "Invalid"
	}
}

// Node is a decoded property-list value. The set of implementations is closed:
// Map, Sequence, String, Bytes, Number, Bool, Date and UID.
type Node interface {
	Kind() NodeKind
	node()
}

// Map is a property-list dictionary.
type Map map[string]Node

// Sequence is a property-list array.
type Sequence []Node

// String is a property-list string.
type String string

// Bytes is a property-list data blob.
type Bytes []byte

// Bool is a property-list boolean.
type Bool bool

// Date is a property-list date.
type Date time.Time

// UID is a keyed-archive object reference (CF$UID). It is kept apart from
// Number so archives re-encode with their references intact.
type UID uint64

// NumberKind tells which field of a Number carries the value
type NumberKind uint8

const (
	NumberSigned NumberKind = iota
	NumberUnsigned
	NumberReal
)

// Number is a property-list integer or real.
type Number struct {
	Type     NumberKind
	Signed   int64
	Unsigned uint64
	Real     float64
}

func (Map) Kind() NodeKind      { return NodeMap }
func (Sequence) Kind() NodeKind { return NodeSequence }
func (String) Kind() NodeKind   { return NodeString }
func (Bytes) Kind() NodeKind    { return NodeBytes }
func (Bool) Kind() NodeKind     { return NodeBool }
func (Date) Kind() NodeKind     { return NodeDate }
func (Number) Kind() NodeKind   { return NodeNumber }
func (UID) Kind() NodeKind      { return NodeUID }

func (Map) node()      {}
func (Sequence) node() {}
func (String) node()   {}
func (Bytes) node()    {}
func (Bool) node()     {}
func (Date) node()     {}
func (Number) node()   {}
func (UID) node()      {}

// KindOf returns the kind of n, or NodeInvalid for a nil node
func KindOf(n Node) NodeKind {
	if n == nil {
		return NodeInvalid
	}
	return n.Kind()
}

// IsContainer reports whether n is a Map or a Sequence
func IsContainer(n Node) bool {
	k := KindOf(n)
	return k == NodeMap || k == NodeSequence
}

// Has reports whether the map contains key
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Keys returns the map keys in sorted order
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the number as a plain Go value
func (n Number) Value() any {
	switch n.Type {
	case NumberUnsigned:
		return n.Unsigned
	case NumberReal:
		return n.Real
	default:
		return n.Signed
	}
}
