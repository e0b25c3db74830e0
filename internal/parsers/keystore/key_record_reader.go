package keystore

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-findmy/internal/interfaces"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

// keyRecordResolver implements the KeyResolver interface over decoded key stores
type keyRecordResolver struct{}

// Ensure keyRecordResolver implements the KeyResolver interface
var _ interfaces.KeyResolver = (*keyRecordResolver)(nil)

// NewResolver creates a KeyResolver. It keeps no state between calls, so one
// resolver can be shared by any number of goroutines.
func NewResolver() interfaces.KeyResolver {
	return &keyRecordResolver{}
}

// Resolve returns the key record for targetID using the lookup order:
// direct fields on the root, then the root child named targetID, then that
// child's own map children in sorted key order.
func (r *keyRecordResolver) Resolve(store types.Node, targetID string) (*types.ResolvedKey, error) {
	root, ok := store.(types.Map)
	if !ok {
		return nil, &types.FormatError{
			Reason: types.FormatNotAMap,
			Detail: fmt.Sprintf("key store root is %s", types.KindOf(store)),
		}
	}
	if targetID == "" {
		return nil, &types.FormatError{Reason: types.FormatEmptyTarget, Detail: "target identifier is empty"}
	}

	// Flat store, direct fields win over any nested children
	if isKeyRecord(root) {
		return readKeyRecord(root, targetID, nil)
	}

	child, ok := root[targetID].(types.Map)
	if !ok {
		return nil, &types.KeyNotFoundError{TargetID: targetID}
	}
	if isKeyRecord(child) {
		return readKeyRecord(child, targetID, []string{targetID})
	}

	// Second nesting level
	for _, name := range child.Keys() {
		grandchild, ok := child[name].(types.Map)
		if ok && isKeyRecord(grandchild) {
			return readKeyRecord(grandchild, targetID, []string{targetID, name})
		}
	}

	return nil, &types.KeyNotFoundError{TargetID: targetID}
}

// Resolve resolves targetID against store with a stateless resolver
func Resolve(store types.Node, targetID string) (*types.ResolvedKey, error) {
	return NewResolver().Resolve(store, targetID)
}

// isKeyRecord reports whether m carries key fields directly
func isKeyRecord(m types.Map) bool {
	return m.Has(types.KeyFieldSymmetric) || m.Has(types.KeyFieldPrivate)
}

// readKeyRecord copies the key material out of a record so the caller can
// wipe it without touching the shared key store
func readKeyRecord(record types.Map, targetID string, path []string) (*types.ResolvedKey, error) {
	symmetricNode, ok := record[types.KeyFieldSymmetric]
	if !ok {
		return nil, &types.MalformedKeyError{TargetID: targetID, Reason: "record has no symmetricKey"}
	}

	symmetric, err := keyBytes(symmetricNode)
	if err != nil {
		return nil, &types.MalformedKeyError{TargetID: targetID, Reason: err.Error()}
	}
	if len(symmetric) != types.SymmetricKeySize {
		return nil, &types.MalformedKeyError{TargetID: targetID, Length: len(symmetric)}
	}

	key := &types.ResolvedKey{
		TargetID: targetID,
		Path:     path,
	}
	copy(key.Symmetric[:], symmetric)

	if privateNode, ok := record[types.KeyFieldPrivate]; ok {
		private, err := keyBytes(privateNode)
		if err != nil {
			return nil, &types.MalformedKeyError{TargetID: targetID, Reason: "privateKey: " + err.Error()}
		}
		key.Private = append([]byte(nil), private...)
	}

	return key, nil
}

// keyBytes accepts raw data, a base64 string, or the {key: {data: ...}} wrapper
func keyBytes(n types.Node) ([]byte, error) {
	switch v := n.(type) {
	case types.Bytes:
		return v, nil
	case types.String:
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(v)))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 key: %w", err)
		}
		return decoded, nil
	case types.Map:
		wrapped, ok := v[types.KeyFieldWrapped].(types.Map)
		if !ok {
			return nil, fmt.Errorf("wrapped key has no %q map", types.KeyFieldWrapped)
		}
		data, ok := wrapped[types.KeyFieldData]
		if !ok {
			return nil, fmt.Errorf("wrapped key has no %q field", types.KeyFieldData)
		}
		if types.KindOf(data) == types.NodeMap {
			return nil, fmt.Errorf("wrapped key data is a Map")
		}
		return keyBytes(data)
	default:
		return nil, fmt.Errorf("key is %s, want Bytes, String or Map", types.KindOf(n))
	}
}
