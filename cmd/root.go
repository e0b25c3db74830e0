package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-findmy/internal/config"
	"github.com/deploymenttheory/go-findmy/pkg/app"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	noColor      bool
	outputFormat string
	configFile   string

	// cfg is loaded before any sub-command runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "go-findmy",
	Short: "Decrypt Find My cache files",
	Long: `go-findmy recovers plaintext from the encrypted property-list caches written
by the Find My application. Each cache file carries a ChaCha20-Poly1305 payload;
the keys come from the FMIPDataManager and FMFDataManager key stores extracted
from the device.

Commands:
  decrypt       Decrypt every known cache group under a directory
  decrypt-file  Decrypt a single cache file with a given key store
  keys          List the identifiers a key store can resolve
  seal          Encrypt a plaintext into a cache file
  config        Show the effective configuration`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := app.ValidateOutputFormat(outputFormat); err != nil {
			return err
		}
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: findmy-config.yaml in ., ./config, $HOME/.findmy, /etc/findmy)")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// newAppContext builds the application context from the global flags
func newAppContext() *app.Context {
	ctx := app.NewContext()
	ctx.OutputFormat = outputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	ctx.NoColor = noColor
	ctx.ConfigureLogger(os.Stderr)
	return ctx
}
