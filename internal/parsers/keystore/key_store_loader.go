package keystore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/deploymenttheory/go-findmy/internal/parsers/propertylist"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

// Load decodes a key store and checks that its root is a map. The returned
// tree is read-only from then on and safe for concurrent resolution.
func Load(data []byte) (types.Node, error) {
	node, _, err := propertylist.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode key store: %w", err)
	}
	if _, ok := node.(types.Map); !ok {
		return nil, &types.FormatError{
			Reason: types.FormatNotAMap,
			Detail: fmt.Sprintf("key store root is %s", types.KindOf(node)),
		}
	}
	return node, nil
}

// LoadFile reads and decodes the key store at path
func LoadFile(path string) (types.Node, error) {
	node, _, err := propertylist.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load key store: %w", err)
	}
	if _, ok := node.(types.Map); !ok {
		return nil, &types.FormatError{
			Reason: types.FormatNotAMap,
			Detail: fmt.Sprintf("key store %s root is %s", path, types.KindOf(node)),
		}
	}
	return node, nil
}

// LoadHex decodes a key store given as hex text, such as the output of
// "xxd -p". Whitespace anywhere in the input is ignored.
func LoadHex(text string) (types.Node, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if compact == "" {
		return nil, &types.FormatError{Reason: types.FormatMalformed, Detail: "empty hex key store"}
	}

	data, err := hex.DecodeString(compact)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex key store: %w", err)
	}
	return Load(data)
}

// Identifiers lists the target identifiers store can resolve. A flat store
// yields the single FlatKeyIdentifier.
func Identifiers(store types.Node) ([]string, error) {
	root, ok := store.(types.Map)
	if !ok {
		return nil, &types.FormatError{
			Reason: types.FormatNotAMap,
			Detail: fmt.Sprintf("key store root is %s", types.KindOf(store)),
		}
	}

	if isKeyRecord(root) {
		return []string{types.FlatKeyIdentifier}, nil
	}

	var ids []string
	for _, name := range root.Keys() {
		child, ok := root[name].(types.Map)
		if !ok {
			continue
		}
		if isKeyRecord(child) || hasNestedRecord(child) {
			ids = append(ids, name)
		}
	}
	return ids, nil
}

// Describe resolves every identifier of store and reports what was found
// without exposing key bytes
func Describe(store types.Node) ([]types.KeyRecordInfo, error) {
	ids, err := Identifiers(store)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver()
	infos := make([]types.KeyRecordInfo, 0, len(ids))
	for _, id := range ids {
		info := types.KeyRecordInfo{Identifier: id}

		key, err := resolver.Resolve(store, id)
		if err != nil {
			info.Status = err.Error()
			var malformed *types.MalformedKeyError
			if errors.As(err, &malformed) {
				info.SymmetricKeyLength = malformed.Length
			}
			infos = append(infos, info)
			continue
		}

		info.Path = key.Path
		info.SymmetricKeyLength = types.SymmetricKeySize
		info.HasPrivateKey = len(key.Private) > 0
		info.Status = "ok"
		key.Wipe()

		infos = append(infos, info)
	}

	return infos, nil
}

func hasNestedRecord(m types.Map) bool {
	for _, child := range m {
		if nested, ok := child.(types.Map); ok && isKeyRecord(nested) {
			return true
		}
	}
	return false
}
