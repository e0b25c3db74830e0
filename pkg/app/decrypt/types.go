package decrypt

import (
	"time"

	"github.com/deploymenttheory/go-findmy/internal/services"
)

// Request represents a decryption request. Either RootDir (batch over the
// known cache groups) or CacheFile with a key store (single file) is set.
type Request struct {
	// Batch mode
	RootDir string
	Groups  []services.CacheGroup

	// Single-file mode
	CacheFile    string
	KeyStorePath string
	TargetID     string

	// KeyStoreHex is a hex-encoded key store used wherever a key store file
	// is missing or unreadable
	KeyStoreHex string

	// Processing options
	TargetMode     string
	PayloadField   string
	OutputDir      string
	WriteArtifacts bool
	Workers        int

	// Show adds a plaintext preview to each decrypted file
	Show bool
}

// SingleFile reports whether the request targets one cache file
func (r *Request) SingleFile() bool {
	return r.CacheFile != ""
}

// Response represents decryption results
type Response struct {
	RunID    string           `json:"run_id" yaml:"run_id"`
	Groups   []GroupInfo      `json:"groups" yaml:"groups"`
	Files    []FileResult     `json:"files" yaml:"files"`
	Summary  services.Summary `json:"summary" yaml:"summary"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
}

// GroupInfo describes a cache group that was processed
type GroupInfo struct {
	Name          string `json:"name" yaml:"name"`
	Label         string `json:"label,omitempty" yaml:"label,omitempty"`
	KeyStore      string `json:"key_store,omitempty" yaml:"key_store,omitempty"`
	KeyStoreError string `json:"key_store_error,omitempty" yaml:"key_store_error,omitempty"`
	Files         int    `json:"files" yaml:"files"`
}

// FileResult represents the outcome for one cache file
type FileResult struct {
	Path          string `json:"path" yaml:"path"`
	Group         string `json:"group,omitempty" yaml:"group,omitempty"`
	TargetID      string `json:"target_id" yaml:"target_id"`
	State         string `json:"state" yaml:"state"`
	Class         string `json:"class,omitempty" yaml:"class,omitempty"`
	Source        string `json:"source,omitempty" yaml:"source,omitempty"`
	RecordFormat  string `json:"record_format,omitempty" yaml:"record_format,omitempty"`
	PlaintextSize int    `json:"plaintext_size" yaml:"plaintext_size"`
	OutputPath    string `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	ErrorKind     string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
	Preview       string `json:"preview,omitempty" yaml:"preview,omitempty"`
}

// Succeeded reports whether the file was decrypted
func (f *FileResult) Succeeded() bool {
	return f.Error == ""
}
