package decrypt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-findmy/internal/services"
	"github.com/deploymenttheory/go-findmy/internal/types"
)

func sampleResponse() *Response {
	return &Response{
		RunID: "3f8c0d7e-1111-4c2b-9a55-000000000000",
		Groups: []GroupInfo{
			{Name: "com.apple.findmy.fmipcore", Label: "FMIP", KeyStore: "FMIPDataManager.bplist", Files: 2},
		},
		Files: []FileResult{
			{
				Path:          "com.apple.findmy.fmipcore/Items.data",
				TargetID:      "com.apple.findmy.fmipcore",
				State:         "done",
				Class:         "structured",
				Source:        "plist",
				PlaintextSize: 120,
				OutputPath:    "com.apple.findmy.fmipcore/Items.data.decrypted.plist",
			},
			{
				Path:      "com.apple.findmy.fmipcore/Owner.data",
				TargetID:  "com.apple.findmy.fmipcore",
				State:     "failed",
				ErrorKind: "authentication",
				Error:     "authentication failed",
			},
		},
		Summary: services.Summary{
			Total:     2,
			Succeeded: 1,
			Failed:    1,
			ByKind:    map[string]int{"authentication": 1},
		},
		Duration: 1500 * time.Millisecond,
	}
}

func TestFormatOutput(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantErr  bool
		validate func(*testing.T, string)
	}{
		{
			name:   "table format",
			format: "table",
			validate: func(t *testing.T, output string) {
				assert.Contains(t, output, "FILE")
				assert.Contains(t, output, "structured/plist")
				assert.Contains(t, output, "Items.data.decrypted.plist")
				assert.Contains(t, output, "authentication: authentication failed")
				assert.Contains(t, output, "Decrypted 1 of 2 files (1 authentication) in 1.5s")
			},
		},
		{
			name:   "json format",
			format: "json",
			validate: func(t *testing.T, output string) {
				var decoded map[string]any
				require.NoError(t, json.Unmarshal([]byte(output), &decoded))
				assert.Equal(t, "3f8c0d7e-1111-4c2b-9a55-000000000000", decoded["run_id"])
				files := decoded["files"].([]any)
				assert.Len(t, files, 2)
			},
		},
		{
			name:   "yaml format",
			format: "yaml",
			validate: func(t *testing.T, output string) {
				var decoded map[string]any
				require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
				summary := decoded["summary"].(map[string]any)
				assert.Equal(t, 1, summary["failed"])
			},
		},
		{
			name:    "unsupported format",
			format:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := FormatOutput(&buf, sampleResponse(), tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, buf.String())
		})
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatOutput(&buf, &Response{}, "table"))
	assert.Equal(t, "No Find My cache files found.\n", buf.String())
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t, "No files processed", FormatSummary(&Response{}))

	single := &Response{Summary: services.Summary{Total: 1, Succeeded: 1}, Duration: time.Second}
	assert.Equal(t, "Decrypted 1 of 1 file in 1s", FormatSummary(single))

	mixed := &Response{
		Summary: services.Summary{
			Total: 5, Succeeded: 2, Failed: 3,
			ByKind: map[string]int{"key_not_found": 2, "format": 1},
		},
		Duration: 2 * time.Second,
	}
	assert.Equal(t, "Decrypted 2 of 5 files (1 format, 2 key_not_found) in 2s", FormatSummary(mixed))
}

func TestRenderPreview(t *testing.T) {
	record := types.Map{
		"name":  types.String("AirTag"),
		"count": types.Number{Type: types.NumberSigned, Signed: 2},
		"seen":  types.Date(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)),
		"key":   types.Bytes(bytes.Repeat([]byte{0xab}, 32)),
		"items": types.Sequence{types.Bool(true), types.UID(3)},
	}

	longText := strings.Repeat("a", 999) + "é" + "tail"

	tests := []struct {
		name     string
		artifact types.DecryptedArtifact
		want     string
	}{
		{
			name:     "property list tree",
			artifact: types.DecryptedArtifact{Class: types.ClassStructured, Source: types.SourcePlist, Record: record},
			want: "{\n" +
				"  count: 2\n" +
				"  items: [\n" +
				"    true\n" +
				"    <uid: 3>\n" +
				"  ]\n" +
				"  key: <32 bytes: " + strings.Repeat("ab", 20) + "...>\n" +
				"  name: AirTag\n" +
				"  seen: <datetime: 2024-01-15T10:30:00Z>\n" +
				"}",
		},
		{
			name:     "json is re-indented",
			artifact: types.DecryptedArtifact{Class: types.ClassStructured, Source: types.SourceJSON, Plaintext: []byte(`{"a":[1,2]}`)},
			want:     "{\n  \"a\": [\n    1,\n    2\n  ]\n}",
		},
		{
			name:     "short text",
			artifact: types.DecryptedArtifact{Plaintext: []byte("opaque friends")},
			want:     "opaque friends",
		},
		{
			name:     "long text is cut on a rune boundary",
			artifact: types.DecryptedArtifact{Plaintext: []byte(longText)},
			want:     strings.Repeat("a", 999) + "...",
		},
		{
			name:     "short binary",
			artifact: types.DecryptedArtifact{Plaintext: []byte{0xff, 0x00, 0x01}},
			want:     "<3 bytes: ff0001>",
		},
		{
			name:     "empty plaintext",
			artifact: types.DecryptedArtifact{},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderPreview(&tt.artifact))
		})
	}
}

func TestFormatTablePreviews(t *testing.T) {
	resp := sampleResponse()
	resp.Files[0].Preview = "{\n  name: AirTag\n}"

	var buf bytes.Buffer
	require.NoError(t, FormatOutput(&buf, resp, "table"))
	assert.Contains(t, buf.String(), "== com.apple.findmy.fmipcore/Items.data ==\n{\n  name: AirTag\n}\n")
	assert.NotContains(t, buf.String(), "== com.apple.findmy.fmipcore/Owner.data ==")
}
