// Package testutil builds key stores, sealed payloads and cache files for tests.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/deploymenttheory/go-findmy/internal/parsers/propertylist"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

// Key returns a 32-byte key filled with b
func Key(b byte) []byte {
	return bytes.Repeat([]byte{b}, types.SymmetricKeySize)
}

// KeyArray returns Key(b) as an array
func KeyArray(b byte) [types.SymmetricKeySize]byte {
	var k [types.SymmetricKeySize]byte
	copy(k[:], Key(b))
	return k
}

// Nonce returns a 12-byte nonce filled with b
func Nonce(b byte) []byte {
	return bytes.Repeat([]byte{b}, types.NonceSize)
}

// KeyRecord builds a {symmetricKey, privateKey} record. A nil private key is omitted.
func KeyRecord(symmetric, private []byte) types.Map {
	record := types.Map{types.KeyFieldSymmetric: types.Bytes(symmetric)}
	if private != nil {
		record[types.KeyFieldPrivate] = types.Bytes(private)
	}
	return record
}

// Seal encrypts plaintext into a nonce||ciphertext||tag payload
func Seal(t testing.TB, key, nonce, plaintext []byte) []byte {
	t.Helper()

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		t.Fatalf("chacha20poly1305.New: %v", err)
	}
	out := append([]byte(nil), nonce...)
	return aead.Seal(out, nonce, plaintext, nil)
}

// CacheFile builds a cache file tree carrying payload in the default field
func CacheFile(payload []byte) types.Map {
	return types.Map{
		types.DefaultPayloadField: types.Bytes(payload),
		types.SignatureField:      types.Bytes([]byte("signature-is-ignored")),
	}
}

// Encode renders node as a binary property list
func Encode(t testing.TB, node types.Node) []byte {
	t.Helper()

	data, err := propertylist.Encode(node, propertylist.FormatBinary)
	if err != nil {
		t.Fatalf("encode property list: %v", err)
	}
	return data
}

// WriteFile writes data under dir, creating parent directories
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// StructuredPlaintext returns a binary property list with a map root
func StructuredPlaintext(t testing.TB) []byte {
	t.Helper()

	return Encode(t, types.Map{
		"name":  types.String("AirTag"),
		"items": types.Sequence{types.String("a"), types.String("b")},
	})
}
