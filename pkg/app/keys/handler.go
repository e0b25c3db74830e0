// Package keys lists the identifiers a Find My key store can resolve.
package keys

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-findmy/internal/parsers/keystore"
	"github.com/deploymenttheory/go-findmy/internal/types"
	"github.com/deploymenttheory/go-findmy/pkg/app"
)

// Request represents a key store inspection request
type Request struct {
	KeyStorePath string
}

// Response lists the records of a key store
type Response struct {
	KeyStore string                `json:"key_store" yaml:"key_store"`
	Flat     bool                  `json:"flat" yaml:"flat"`
	Records  []types.KeyRecordInfo `json:"records" yaml:"records"`
}

// Validate validates an inspection request
func (r *Request) Validate() error {
	if strings.TrimSpace(r.KeyStorePath) == "" {
		return app.NewError(app.ErrCodeInvalidInput, "key store path is required", nil)
	}
	return nil
}

// Handle loads the key store and describes every record in it
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	store, err := keystore.LoadFile(req.KeyStorePath)
	if err != nil {
		return nil, app.NewError(app.ErrCodeKeyStore, "failed to load key store", err)
	}

	records, err := keystore.Describe(store)
	if err != nil {
		return nil, app.NewError(app.ErrCodeKeyStore, "failed to inspect key store", err)
	}

	ctx.Logger.Debug().Str("key_store", req.KeyStorePath).Int("records", len(records)).Msg("key store inspected")

	return &Response{
		KeyStore: req.KeyStorePath,
		Flat:     len(records) == 1 && records[0].Identifier == types.FlatKeyIdentifier,
		Records:  records,
	}, nil
}

// FormatOutput writes the key store description to w. Key bytes are never printed.
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		encoder.SetIndent(2)
		return encoder.Encode(response)
	case "table":
		if len(response.Records) == 0 {
			fmt.Fprintf(w, "No key records found in %s\n", response.KeyStore)
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "IDENTIFIER\tPATH\tKEY LEN\tPRIVATE\tSTATUS\n")
		fmt.Fprintf(tw, "----------\t----\t-------\t-------\t------\n")
		for _, r := range response.Records {
			path := strings.Join(r.Path, "/")
			if path == "" {
				path = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n", r.Identifier, path, r.SymmetricKeyLength, r.HasPrivateKey, r.Status)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
