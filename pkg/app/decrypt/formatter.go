package decrypt

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-findmy/internal/types"
)

const (
	// previewLimit bounds the plaintext shown for non-structured content
	previewLimit = 1000

	// byteSummaryLimit bounds the bytes shown as hex in a byte summary
	byteSummaryLimit = 20
)

// FormatOutput writes decryption results to w in the given format
func FormatOutput(w io.Writer, response *Response, format string) error {
	switch format {
	case "json":
		return formatJSON(w, response)
	case "yaml":
		return formatYAML(w, response)
	case "table":
		return formatTable(w, response)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatTable formats results as a table
func formatTable(w io.Writer, response *Response) error {
	if len(response.Files) == 0 {
		fmt.Fprintln(w, "No Find My cache files found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header
	fmt.Fprintf(tw, "FILE\tTARGET\tSTATE\tCLASS\tRESULT\n")
	fmt.Fprintf(tw, "----\t------\t-----\t-----\t------\n")

	// Data rows in batch order
	for _, file := range response.Files {
		result := file.OutputPath
		if !file.Succeeded() {
			result = fmt.Sprintf("%s: %s", file.ErrorKind, file.Error)
		} else if result == "" {
			result = fmt.Sprintf("%d bytes", file.PlaintextSize)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", file.Path, file.TargetID, file.State, classLabel(file), result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, file := range response.Files {
		if file.Preview != "" {
			fmt.Fprintf(w, "\n== %s ==\n%s\n", file.Path, file.Preview)
		}
	}

	// Summary
	fmt.Fprintf(w, "\n%s\n", FormatSummary(response))
	return nil
}

// formatJSON formats results as JSON
func formatJSON(w io.Writer, response *Response) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// formatYAML formats results as YAML
func formatYAML(w io.Writer, response *Response) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(response)
}

// FormatSummary provides a one-line summary of a run
func FormatSummary(response *Response) string {
	s := response.Summary
	if s.Total == 0 {
		return "No files processed"
	}

	summary := fmt.Sprintf("Decrypted %d of %d file", s.Succeeded, s.Total)
	if s.Total != 1 {
		summary += "s"
	}

	if s.Failed > 0 {
		kinds := make([]string, 0, len(s.ByKind))
		for kind := range s.ByKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)

		summary += " ("
		for i, kind := range kinds {
			if i > 0 {
				summary += ", "
			}
			summary += fmt.Sprintf("%d %s", s.ByKind[kind], kind)
		}
		summary += ")"
	}

	summary += fmt.Sprintf(" in %v", response.Duration)
	return summary
}

func classLabel(file FileResult) string {
	switch {
	case file.Class == "":
		return "-"
	case file.Source != "":
		return file.Class + "/" + file.Source
	default:
		return file.Class
	}
}

// RenderPreview renders a decrypted artifact for display. Property lists are
// shown as an indented tree and JSON is re-indented. Other plaintext is shown
// as text up to previewLimit bytes, or summarized when it is not UTF-8.
func RenderPreview(artifact *types.DecryptedArtifact) string {
	if artifact.Record != nil {
		var b strings.Builder
		writeNode(&b, artifact.Record, 0)
		return b.String()
	}
	if artifact.Source == types.SourceJSON {
		var buf bytes.Buffer
		if err := json.Indent(&buf, artifact.Plaintext, "", "  "); err == nil {
			return buf.String()
		}
	}

	text := artifact.Plaintext
	truncated := len(text) > previewLimit
	if truncated {
		text = text[:previewLimit]
		// Drop a rune cut in half by the limit
		for i := 0; i < utf8.UTFMax && len(text) > 0 && !utf8.Valid(text); i++ {
			text = text[:len(text)-1]
		}
	}
	if !utf8.Valid(text) {
		return byteSummary(artifact.Plaintext)
	}
	if truncated {
		return string(text) + "..."
	}
	return string(text)
}

// writeNode writes n at the given nesting depth, two spaces per level
func writeNode(b *strings.Builder, n types.Node, depth int) {
	pad := strings.Repeat("  ", depth)

	switch v := n.(type) {
	case types.Map:
		b.WriteString("{\n")
		for _, key := range v.Keys() {
			fmt.Fprintf(b, "%s  %s: ", pad, key)
			writeNode(b, v[key], depth+1)
			b.WriteString("\n")
		}
		b.WriteString(pad + "}")
	case types.Sequence:
		b.WriteString("[\n")
		for _, item := range v {
			b.WriteString(pad + "  ")
			writeNode(b, item, depth+1)
			b.WriteString("\n")
		}
		b.WriteString(pad + "]")
	case types.Bytes:
		b.WriteString(byteSummary(v))
	case types.Date:
		fmt.Fprintf(b, "<datetime: %s>", time.Time(v).UTC().Format(time.RFC3339))
	case types.UID:
		fmt.Fprintf(b, "<uid: %d>", uint64(v))
	case types.Number:
		fmt.Fprint(b, v.Value())
	case types.String:
		b.WriteString(string(v))
	case types.Bool:
		fmt.Fprint(b, bool(v))
	}
}

// byteSummary describes binary data by length and leading bytes
func byteSummary(data []byte) string {
	if len(data) <= byteSummaryLimit {
		return fmt.Sprintf("<%d bytes: %s>", len(data), hex.EncodeToString(data))
	}
	return fmt.Sprintf("<%d bytes: %s...>", len(data), hex.EncodeToString(data[:byteSummaryLimit]))
}
