package types

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy
// Every failure is recoverable per file. Callers match the sentinels with
// errors.Is and the typed errors with errors.As.

var (
	// ErrFormat marks malformed or missing structure in a key store, a cache
	// file or an encrypted payload
	ErrFormat = errors.New("format error")

	// ErrKeyNotFound marks a key store without a record for the target
	ErrKeyNotFound = errors.New("key not found")

	// ErrMalformedKey marks a record whose key material cannot be used
	ErrMalformedKey = errors.New("malformed key")

	// ErrAuthentication marks a payload whose Poly1305 tag did not verify
	ErrAuthentication = errors.New("authentication failed")
)

// FormatReason narrows down a FormatError.
type FormatReason string

const (
	FormatTooShort     FormatReason = "TooShort"
	FormatMissingField FormatReason = "MissingField"
	FormatNotAMap      FormatReason = "NotAMap"
	FormatMalformed    FormatReason = "Malformed"
	FormatEmptyTarget  FormatReason = "EmptyTarget"
)

// FormatError reports malformed input structure.
type FormatError struct {
	Reason FormatReason
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("format error: %s", e.Reason)
	}
	return fmt.Sprintf("format error: %s: %s", e.Reason, e.Detail)
}

// Is matches ErrFormat
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// KeyNotFoundError reports that no key record exists for a target identifier.
type KeyNotFoundError struct {
	TargetID string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("no key record for identifier %q", e.TargetID)
}

// Is matches ErrKeyNotFound
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// MalformedKeyError reports a key record that was found but is unusable.
type MalformedKeyError struct {
	TargetID string
	Length   int
	Reason   string
}

func (e *MalformedKeyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed key for identifier %q: %s", e.TargetID, e.Reason)
	}
	return fmt.Sprintf("malformed key for identifier %q: symmetric key is %d bytes, want %d",
		e.TargetID, e.Length, SymmetricKeySize)
}

// Is matches ErrMalformedKey
func (e *MalformedKeyError) Is(target error) bool {
	return target == ErrMalformedKey
}

// AuthenticationError reports a failed tag verification. No plaintext is
// ever returned alongside it.
type AuthenticationError struct {
	Cause error
}

func (e *AuthenticationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %v", e.Cause)
	}
	return "authentication failed"
}

// Is matches ErrAuthentication
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// PipelineError is the failure of one cache file. Stage is the last state the
// file reached before failing; Err is the unchanged underlying error.
type PipelineError struct {
	Path  string
	Stage PipelineState
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: failed after %s: %v", e.Path, e.Stage, e.Err)
	}
	return fmt.Sprintf("failed after %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Error kinds reported in summaries
const (
	KindFormat         = "format"
	KindKeyNotFound    = "key_not_found"
	KindMalformedKey   = "malformed_key"
	KindAuthentication = "authentication"
	KindCanceled       = "canceled"
	KindOther          = "other"
)

// ErrorKind maps err to a stable label. It returns "" for a nil error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrKeyNotFound):
		return KindKeyNotFound
	case errors.Is(err, ErrMalformedKey):
		return KindMalformedKey
	case errors.Is(err, ErrFormat):
		return KindFormat
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindOther
	}
}
