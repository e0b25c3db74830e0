package decrypt

import (
	"strings"

	"github.com/deploymenttheory/go-findmy/internal/services"
	"github.com/deploymenttheory/go-findmy/internal/types"
	"github.com/deploymenttheory/go-findmy/pkg/app"
)

// maxWorkers bounds the worker pool of a single run
const maxWorkers = 256

// Validate validates a decryption request and fills in defaults
func (r *Request) Validate() error {
	// Exactly one input mode
	if r.RootDir == "" && r.CacheFile == "" {
		return app.NewError(app.ErrCodeInvalidInput, "either a root directory or a cache file is required", nil)
	}
	if r.RootDir != "" && r.CacheFile != "" {
		return app.NewError(app.ErrCodeInvalidInput, "cannot specify both a root directory and a cache file", nil)
	}

	// Single-file mode needs its key store
	if r.SingleFile() && r.KeyStorePath == "" && strings.TrimSpace(r.KeyStoreHex) == "" {
		return app.NewError(app.ErrCodeInvalidInput, "a key store is required when decrypting a single cache file", nil)
	}
	if !r.SingleFile() && (r.KeyStorePath != "" || r.TargetID != "") {
		return app.NewError(app.ErrCodeInvalidInput, "key store and target apply to single-file mode only", nil)
	}

	// Target mode
	mode, err := services.ParseTargetMode(r.TargetMode)
	if err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid target mode", err)
	}
	r.TargetMode = string(mode)

	// Worker pool
	if r.Workers < 0 || r.Workers > maxWorkers {
		return app.NewError(app.ErrCodeInvalidInput, "workers must be between 1 and 256", nil)
	}
	if r.Workers == 0 {
		r.Workers = services.DefaultWorkers
	}

	// Payload field
	r.PayloadField = strings.TrimSpace(r.PayloadField)
	if r.PayloadField == "" {
		r.PayloadField = types.DefaultPayloadField
	}

	if r.Groups == nil {
		r.Groups = services.DefaultGroups()
	}

	return nil
}
