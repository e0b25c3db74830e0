package payload

import (
	"fmt"

	"github.com/deploymenttheory/go-findmy/internal/types"
)

// Parse splits raw into nonce, ciphertext and tag. The returned slices alias
// raw; nothing is copied or reinterpreted.
func Parse(raw []byte) (*types.EncryptedPayload, error) {
	// Minimum size: nonce (12 bytes) + tag (16 bytes) = 28 bytes
	if len(raw) < types.MinPayloadSize {
		return nil, &types.FormatError{
			Reason: types.FormatTooShort,
			Detail: fmt.Sprintf("need at least %d bytes, got %d", types.MinPayloadSize, len(raw)),
		}
	}

	tagStart := len(raw) - types.TagSize

	return &types.EncryptedPayload{
		Nonce:      raw[:types.NonceSize:types.NonceSize],
		Ciphertext: raw[types.NonceSize:tagStart:tagStart],
		Tag:        raw[tagStart:],
	}, nil
}

// Compose joins the three payload parts into a new buffer
func Compose(nonce, ciphertext, tag []byte) ([]byte, error) {
	if len(nonce) != types.NonceSize {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", types.NonceSize, len(nonce))
	}
	if len(tag) != types.TagSize {
		return nil, fmt.Errorf("tag must be %d bytes, got %d", types.TagSize, len(tag))
	}

	out := make([]byte, 0, len(nonce)+len(ciphertext)+len(tag))
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	out = append(out, tag...)
	return out, nil
}
