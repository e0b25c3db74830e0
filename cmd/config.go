package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-findmy/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the settings a decryption run would use after merging defaults,
the configuration file and FINDMY_* environment variables.

Examples:
  go-findmy config
  FINDMY_WORKERS=8 go-findmy config -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printConfig(cmd.OutOrStdout(), cfg, outputFormat)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func printConfig(w io.Writer, c *config.Config, format string) error {
	view := struct {
		Workers        int    `json:"workers" yaml:"workers"`
		PayloadField   string `json:"payload_field" yaml:"payload_field"`
		TargetMode     string `json:"target_mode" yaml:"target_mode"`
		OutputDir      string `json:"output_dir" yaml:"output_dir"`
		WriteArtifacts bool   `json:"write_artifacts" yaml:"write_artifacts"`
	}{c.Workers, c.PayloadField, c.TargetMode, c.OutputDir, c.WriteArtifacts}

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		encoder.SetIndent(2)
		return encoder.Encode(view)
	default:
		outDir := view.OutputDir
		if outDir == "" {
			outDir = "(next to each cache file)"
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "workers\t%d\n", view.Workers)
		fmt.Fprintf(tw, "payload_field\t%s\n", view.PayloadField)
		fmt.Fprintf(tw, "target_mode\t%s\n", view.TargetMode)
		fmt.Fprintf(tw, "output_dir\t%s\n", outDir)
		fmt.Fprintf(tw, "write_artifacts\t%t\n", view.WriteArtifacts)
		return tw.Flush()
	}
}
