package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "format", err: &FormatError{Reason: FormatTooShort}, want: KindFormat},
		{name: "key not found", err: &KeyNotFoundError{TargetID: "x"}, want: KindKeyNotFound},
		{name: "malformed key", err: &MalformedKeyError{TargetID: "x", Length: 3}, want: KindMalformedKey},
		{name: "authentication", err: &AuthenticationError{Cause: errors.New("open failed")}, want: KindAuthentication},
		{name: "canceled", err: context.Canceled, want: KindCanceled},
		{name: "deadline", err: context.DeadlineExceeded, want: KindCanceled},
		{name: "other", err: errors.New("disk on fire"), want: KindOther},
		{
			name: "wrapped in pipeline error",
			err:  &PipelineError{Path: "Items.data", Stage: StateKeyResolved, Err: &AuthenticationError{}},
			want: KindAuthentication,
		},
		{
			name: "wrapped with fmt",
			err:  fmt.Errorf("group: %w", &KeyNotFoundError{TargetID: "g"}),
			want: KindKeyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestPipelineErrorUnwrapsToCause(t *testing.T) {
	cause := &MalformedKeyError{TargetID: "groupA", Length: 16}
	err := &PipelineError{Path: "Devices.data", Stage: StateUnprocessed, Err: cause}

	assert.True(t, errors.Is(err, ErrMalformedKey))
	assert.False(t, errors.Is(err, ErrFormat))

	var mk *MalformedKeyError
	require.True(t, errors.As(err, &mk))
	assert.Same(t, cause, mk)

	assert.Equal(t, `Devices.data: failed after unprocessed: malformed key for identifier "groupA": symmetric key is 16 bytes, want 32`, err.Error())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "format error: MissingField", (&FormatError{Reason: FormatMissingField}).Error())
	assert.Equal(t, "format error: TooShort: got 3", (&FormatError{Reason: FormatTooShort, Detail: "got 3"}).Error())
	assert.Equal(t, `no key record for identifier "Items"`, (&KeyNotFoundError{TargetID: "Items"}).Error())
	assert.Equal(t, "authentication failed", (&AuthenticationError{}).Error())
	assert.Equal(t, "failed after decrypted: boom", (&PipelineError{Stage: StateDecrypted, Err: errors.New("boom")}).Error())
}

func TestPipelineStateString(t *testing.T) {
	assert.Equal(t, "unprocessed", StateUnprocessed.String())
	assert.Equal(t, "key-resolved", StateKeyResolved.String())
	assert.Equal(t, "classified", StateClassified.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", PipelineState(42).String())
}
