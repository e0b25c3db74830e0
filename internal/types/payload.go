package types

// Encrypted payload layout
// nonce (12 bytes) || ciphertext (N >= 0 bytes) || Poly1305 tag (16 bytes)

const (
	// NonceSize is the ChaCha20-Poly1305 nonce length
	NonceSize = 12

	// TagSize is the Poly1305 authentication tag length
	TagSize = 16

	// MinPayloadSize is the length of a payload carrying an empty ciphertext
	MinPayloadSize = NonceSize + TagSize

	// DefaultPayloadField is the cache file field holding the encrypted payload
	DefaultPayloadField = "encryptedData"

	// SignatureField is present in some cache files and ignored
	SignatureField = "signature"
)

// EncryptedPayload is a payload split into its three parts. The slices alias
// the buffer the payload was parsed from.
type EncryptedPayload struct {
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// Len returns the total payload length
func (p *EncryptedPayload) Len() int {
	return len(p.Nonce) + len(p.Ciphertext) + len(p.Tag)
}

// Sealed returns a fresh ciphertext||tag buffer as expected by AEAD Open
func (p *EncryptedPayload) Sealed() []byte {
	out := make([]byte, 0, len(p.Ciphertext)+len(p.Tag))
	out = append(out, p.Ciphertext...)
	return append(out, p.Tag...)
}
