package services

import (
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/deploymenttheory/go-findmy/internal/interfaces"
	"github.com/deploymenttheory/go-findmy/internal/parsers/payload"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

// AEADDecoder opens ChaCha20-Poly1305 payloads laid out as nonce||ciphertext||tag
type AEADDecoder struct {
	logger zerolog.Logger
}

// Ensure AEADDecoder implements the PayloadDecoder interface
var _ interfaces.PayloadDecoder = (*AEADDecoder)(nil)

// NewAEADDecoder creates a new payload decoder
func NewAEADDecoder(logger zerolog.Logger) *AEADDecoder {
	return &AEADDecoder{logger: logger}
}

// Decode verifies the Poly1305 tag and decrypts the payload. The cipher only
// releases plaintext after the tag matched; on mismatch the result is nil and
// the error is an AuthenticationError.
func (d *AEADDecoder) Decode(key [types.SymmetricKeySize]byte, raw []byte, associatedData []byte) ([]byte, error) {
	p, err := payload.Parse(raw)
	if err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("nonce", hex.EncodeToString(p.Nonce)).
		Int("ciphertext_len", len(p.Ciphertext)).
		Msg("opening payload")

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, p.Nonce, p.Sealed(), associatedData)
	if err != nil {
		return nil, &types.AuthenticationError{Cause: err}
	}
	if plaintext == nil {
		plaintext = []byte{}
	}

	return plaintext, nil
}

// Seal encrypts plaintext under key and nonce and returns nonce||ciphertext||tag
func (d *AEADDecoder) Seal(key [types.SymmetricKeySize]byte, nonce []byte, plaintext []byte, associatedData []byte) ([]byte, error) {
	if len(nonce) != types.NonceSize {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", types.NonceSize, len(nonce))
	}

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, associatedData), nil
}
