package payload

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-findmy/internal/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantErr   bool
		wantCTLen int
	}{
		{name: "empty", length: 0, wantErr: true},
		{name: "one byte short", length: 27, wantErr: true},
		{name: "minimum size", length: 28, wantCTLen: 0},
		{name: "one byte of ciphertext", length: 29, wantCTLen: 1},
		{name: "large payload", length: 4096, wantCTLen: 4096 - 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]byte, tt.length)
			for i := range raw {
				raw[i] = byte(i)
			}

			p, err := Parse(raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, p)
				assert.True(t, errors.Is(err, types.ErrFormat))

				var fe *types.FormatError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, types.FormatTooShort, fe.Reason)
				return
			}

			require.NoError(t, err)
			assert.Len(t, p.Nonce, types.NonceSize)
			assert.Len(t, p.Tag, types.TagSize)
			assert.Len(t, p.Ciphertext, tt.wantCTLen)
			assert.Equal(t, tt.length, p.Len())

			assert.Equal(t, raw[:12], p.Nonce)
			assert.Equal(t, raw[tt.length-16:], p.Tag)
		})
	}
}

func TestSealedDoesNotClobberTag(t *testing.T) {
	raw := bytes.Repeat([]byte{0x01}, 40)
	p, err := Parse(raw)
	require.NoError(t, err)

	sealed := p.Sealed()
	require.Len(t, sealed, 40-types.NonceSize)
	sealed[0] = 0xff

	assert.Equal(t, byte(0x01), raw[types.NonceSize])
}

func TestCompose(t *testing.T) {
	nonce := bytes.Repeat([]byte{0xaa}, types.NonceSize)
	tag := bytes.Repeat([]byte{0xbb}, types.TagSize)
	ct := []byte("cipher")

	raw, err := Compose(nonce, ct, tag)
	require.NoError(t, err)

	p, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, nonce, p.Nonce)
	assert.Equal(t, ct, p.Ciphertext)
	assert.Equal(t, tag, p.Tag)

	_, err = Compose(nonce[:11], ct, tag)
	assert.Error(t, err)
	_, err = Compose(nonce, ct, tag[:15])
	assert.Error(t, err)
}

func FuzzParse(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, 27))
	f.Add(make([]byte, 28))
	f.Add(bytes.Repeat([]byte{0x42}, 100))

	f.Fuzz(func(t *testing.T, raw []byte) {
		p, err := Parse(raw)
		if len(raw) < types.MinPayloadSize {
			if err == nil {
				t.Fatalf("expected error for %d bytes", len(raw))
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		joined, err := Compose(p.Nonce, p.Ciphertext, p.Tag)
		if err != nil {
			t.Fatalf("compose: %v", err)
		}
		if !bytes.Equal(joined, raw) {
			t.Fatalf("parts do not reassemble the payload")
		}
	})
}
