// Package seal writes cache files in the Find My layout from plaintext, for
// building fixtures and checking a key store end to end.
package seal

import (
	"crypto/rand"
	"fmt"
	"os"
	"strings"

	"github.com/deploymenttheory/go-findmy/internal/parsers/keystore"
	"github.com/deploymenttheory/go-findmy/internal/parsers/propertylist"
	"github.com/deploymenttheory/go-findmy/internal/types"
	"github.com/deploymenttheory/go-findmy/pkg/app"
	appsvc "github.com/deploymenttheory/go-findmy/pkg/services"
)

// Request represents a sealing request
type Request struct {
	PlaintextPath string
	KeyStorePath  string
	TargetID      string
	OutPath       string
	PayloadField  string

	// Nonce is generated when nil
	Nonce []byte
}

// Response describes the written cache file
type Response struct {
	OutPath     string `json:"out_path" yaml:"out_path"`
	TargetID    string `json:"target_id" yaml:"target_id"`
	PayloadSize int    `json:"payload_size" yaml:"payload_size"`
}

// Validate validates a sealing request and fills in defaults
func (r *Request) Validate() error {
	if r.PlaintextPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "plaintext path is required", nil)
	}
	if r.KeyStorePath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "key store path is required", nil)
	}
	if strings.TrimSpace(r.TargetID) == "" {
		return app.NewError(app.ErrCodeInvalidInput, "target identifier is required", nil)
	}
	if r.OutPath == "" {
		return app.NewError(app.ErrCodeInvalidInput, "output path is required", nil)
	}
	if r.Nonce != nil && len(r.Nonce) != types.NonceSize {
		return app.NewError(app.ErrCodeInvalidInput, fmt.Sprintf("nonce must be %d bytes", types.NonceSize), nil)
	}
	if r.PayloadField == "" {
		r.PayloadField = types.DefaultPayloadField
	}
	return nil
}

// Handle encrypts the plaintext with the key resolved for the target and
// writes a binary property list {payloadField: nonce||ciphertext||tag}
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	store, err := keystore.LoadFile(req.KeyStorePath)
	if err != nil {
		return nil, app.NewError(app.ErrCodeKeyStore, "failed to load key store", err)
	}

	key, err := keystore.Resolve(store, req.TargetID)
	if err != nil {
		return nil, app.NewError(app.ErrCodeKeyStore, "failed to resolve key", err)
	}
	defer key.Wipe()

	plaintext, err := os.ReadFile(req.PlaintextPath)
	if err != nil {
		return nil, app.NewError(app.ErrCodeInvalidInput, "failed to read plaintext", err)
	}

	nonce := req.Nonce
	if nonce == nil {
		nonce = make([]byte, types.NonceSize)
		if _, err := rand.Read(nonce); err != nil {
			return nil, fmt.Errorf("failed to generate nonce: %w", err)
		}
	}

	factory := appsvc.NewServiceFactory(appsvc.Options{Logger: ctx.Logger})
	defer factory.Shutdown()

	decoder, err := factory.Decoder()
	if err != nil {
		return nil, err
	}
	sealed, err := decoder.Seal(key.Symmetric, nonce, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to seal plaintext: %w", err)
	}

	data, err := propertylist.Encode(types.Map{req.PayloadField: types.Bytes(sealed)}, propertylist.FormatBinary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache file: %w", err)
	}

	if err := os.WriteFile(req.OutPath, data, 0o600); err != nil {
		return nil, app.NewError(app.ErrCodeOutput, "failed to write cache file", err)
	}

	ctx.Logger.Info().Str("out", req.OutPath).Str("target", req.TargetID).Int("payload_len", len(sealed)).Msg("cache file sealed")

	return &Response{
		OutPath:     req.OutPath,
		TargetID:    req.TargetID,
		PayloadSize: len(sealed),
	}, nil
}
