package services

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-findmy/internal/testutil"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

func TestAEADDecoderRoundTrip(t *testing.T) {
	decoder := NewAEADDecoder(zerolog.Nop())

	tests := []struct {
		name      string
		plaintext []byte
	}{
		{name: "short text", plaintext: []byte("hello")},
		{name: "structured plaintext", plaintext: testutil.StructuredPlaintext(t)},
		{name: "empty", plaintext: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testutil.Seal(t, testutil.Key(0x07), testutil.Nonce(0x01), tt.plaintext)
			assert.Len(t, raw, types.MinPayloadSize+len(tt.plaintext))

			plaintext, err := decoder.Decode(testutil.KeyArray(0x07), raw, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, plaintext)
		})
	}
}

func TestAEADDecoderZeroKeyEmptyPlaintext(t *testing.T) {
	raw := testutil.Seal(t, testutil.Key(0x00), testutil.Nonce(0x00), nil)
	require.Len(t, raw, 28)

	plaintext, err := NewAEADDecoder(zerolog.Nop()).Decode([32]byte{}, raw, nil)
	require.NoError(t, err)
	assert.NotNil(t, plaintext)
	assert.Empty(t, plaintext)

	assert.Equal(t, types.ClassOpaque, NewClassifier().Classify(plaintext).Class)
}

func TestAEADDecoderRejectsTampering(t *testing.T) {
	decoder := NewAEADDecoder(zerolog.Nop())
	raw := testutil.Seal(t, testutil.Key(0x07), testutil.Nonce(0x01), []byte("location history"))

	flip := func(i int) []byte {
		out := append([]byte(nil), raw...)
		out[i] ^= 0x01
		return out
	}

	tests := []struct {
		name string
		key  [32]byte
		raw  []byte
	}{
		{name: "flipped tag byte", key: testutil.KeyArray(0x07), raw: flip(len(raw) - 1)},
		{name: "flipped ciphertext byte", key: testutil.KeyArray(0x07), raw: flip(types.NonceSize)},
		{name: "flipped nonce byte", key: testutil.KeyArray(0x07), raw: flip(0)},
		{name: "wrong key", key: testutil.KeyArray(0x08), raw: raw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plaintext, err := decoder.Decode(tt.key, tt.raw, nil)
			require.Error(t, err)
			assert.Nil(t, plaintext)
			assert.True(t, errors.Is(err, types.ErrAuthentication))
		})
	}
}

func TestAEADDecoderTooShort(t *testing.T) {
	plaintext, err := NewAEADDecoder(zerolog.Nop()).Decode(testutil.KeyArray(0x07), make([]byte, 27), nil)
	require.Error(t, err)
	assert.Nil(t, plaintext)

	var fe *types.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, types.FormatTooShort, fe.Reason)
	assert.False(t, errors.Is(err, types.ErrAuthentication))
}

func TestAEADDecoderSeal(t *testing.T) {
	decoder := NewAEADDecoder(zerolog.Nop())
	key := testutil.KeyArray(0x33)

	raw, err := decoder.Seal(key, testutil.Nonce(0x09), []byte("friends"), nil)
	require.NoError(t, err)
	assert.Equal(t, testutil.Seal(t, testutil.Key(0x33), testutil.Nonce(0x09), []byte("friends")), raw)

	plaintext, err := decoder.Decode(key, raw, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("friends"), plaintext)

	_, err = decoder.Seal(key, testutil.Nonce(0x09)[:8], []byte("friends"), nil)
	assert.Error(t, err)
}

func TestAEADDecoderAssociatedData(t *testing.T) {
	decoder := NewAEADDecoder(zerolog.Nop())
	key := testutil.KeyArray(0x21)

	raw, err := decoder.Seal(key, testutil.Nonce(0x02), []byte("owner"), []byte("Owner.data"))
	require.NoError(t, err)

	_, err = decoder.Decode(key, raw, nil)
	assert.True(t, errors.Is(err, types.ErrAuthentication))

	plaintext, err := decoder.Decode(key, raw, []byte("Owner.data"))
	require.NoError(t, err)
	assert.Equal(t, []byte("owner"), plaintext)
}
