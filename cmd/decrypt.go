package cmd

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-findmy/pkg/app"
	"github.com/deploymenttheory/go-findmy/pkg/app/decrypt"
)

var (
	// Processing options shared by decrypt and decrypt-file
	outputDir    string
	noWrite      bool
	workers      int
	targetMode   string
	payloadField string
	keyStoreHex  string
	show         bool
	timeout      time.Duration

	// decrypt-file only
	keyStorePath string
	targetID     string
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt [root-dir]",
	Short: "Decrypt the FMIP and FMF cache groups under a directory",
	Long: `Decrypt every known Find My cache file under a directory.

The directory is expected to contain com.apple.findmy.fmipcore and
com.apple.findmy.fmfcore cache directories and the FMIPDataManager.bplist and
FMFDataManager.bplist key stores (either next to the cache directories or
inside them). A file that cannot be decrypted is reported and skipped.

Examples:
  # Decrypt the caches in the current directory
  go-findmy decrypt

  # Write artifacts to a separate directory and report as JSON
  go-findmy decrypt ./extraction --out-dir ./decrypted -o json

  # Look keys up by cache file name in a nested key store
  go-findmy decrypt ./extraction --target-mode file

  # Supply a key store as hex for groups whose store is missing
  xxd -p FMIPDataManager.bplist | go-findmy decrypt ./extraction --key-store-hex -`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		return runDecrypt(cmd, &decrypt.Request{RootDir: root})
	},
}

var decryptFileCmd = &cobra.Command{
	Use:   "decrypt-file <cache-file>",
	Short: "Decrypt a single cache file",
	Long: `Decrypt one cache file with an explicit key store, given either as a file
or as hex text (--key-store-hex, "-" reads it from stdin).

Examples:
  go-findmy decrypt-file Items.data --key-store FMIPDataManager.bplist
  go-findmy decrypt-file FriendCacheData.data --key-store keys.bplist --target com.apple.findmy.fmfcore
  go-findmy decrypt-file Items.data --key-store-hex "$(xxd -p keys.bplist)" --show`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecrypt(cmd, &decrypt.Request{
			CacheFile:    args[0],
			KeyStorePath: keyStorePath,
			TargetID:     targetID,
		})
	},
}

func init() {
	rootCmd.AddCommand(decryptCmd, decryptFileCmd)

	for _, c := range []*cobra.Command{decryptCmd, decryptFileCmd} {
		c.Flags().StringVar(&outputDir, "out-dir", "", "directory for decrypted artifacts (default: next to each cache file)")
		c.Flags().BoolVar(&noWrite, "no-write", false, "report only, do not write artifacts")
		c.Flags().IntVarP(&workers, "workers", "w", 0, "number of files decrypted in parallel")
		c.Flags().StringVar(&targetMode, "target-mode", "", "key identifier derivation (group, file)")
		c.Flags().StringVar(&payloadField, "payload-field", "", "cache file field holding the encrypted payload")
		c.Flags().StringVar(&keyStoreHex, "key-store-hex", "", `hex-encoded key store used when a key store file is missing ("-" reads stdin)`)
		c.Flags().BoolVar(&show, "show", false, "include a preview of each decrypted plaintext")
		c.Flags().DurationVar(&timeout, "timeout", 0, "stop starting new files after this long (0 means no limit)")
		c.MarkFlagsMutuallyExclusive("out-dir", "no-write")
	}

	decryptFileCmd.Flags().StringVarP(&keyStorePath, "key-store", "k", "", "key store property list")
	decryptFileCmd.Flags().StringVarP(&targetID, "target", "t", "", "key store identifier (default: derived from the path)")
	decryptFileCmd.MarkFlagsOneRequired("key-store", "key-store-hex")
}

func runDecrypt(cmd *cobra.Command, request *decrypt.Request) error {
	ctx, stop := newAppContext().WithSignals(os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel func()
		ctx, cancel = ctx.WithTimeout(timeout)
		defer cancel()
	}

	applyProcessingOptions(cmd, request)
	hexStore, err := readKeyStoreHex(cmd.InOrStdin(), keyStoreHex)
	if err != nil {
		return err
	}
	request.KeyStoreHex = hexStore
	request.Show = show

	response, err := decrypt.Handle(ctx, request)
	if err != nil {
		return err
	}

	if err := decrypt.FormatOutput(cmd.OutOrStdout(), response, ctx.OutputFormat); err != nil {
		return app.NewError(app.ErrCodeOutput, "failed to write report", err)
	}

	if err := ctx.Interrupted(); err != nil {
		return err
	}

	if response.Summary.Failed > 0 {
		return app.NewError(app.ErrCodePartialFailure,
			fmt.Sprintf("%d of %d cache files failed", response.Summary.Failed, response.Summary.Total), nil)
	}
	return nil
}

// applyProcessingOptions merges configuration with the flags the user set
func applyProcessingOptions(cmd *cobra.Command, request *decrypt.Request) {
	request.Workers = cfg.Workers
	request.TargetMode = cfg.TargetMode
	request.PayloadField = cfg.PayloadField
	request.OutputDir = cfg.OutputDir
	request.WriteArtifacts = cfg.WriteArtifacts

	flags := cmd.Flags()
	if flags.Changed("workers") {
		request.Workers = workers
	}
	if flags.Changed("target-mode") {
		request.TargetMode = targetMode
	}
	if flags.Changed("payload-field") {
		request.PayloadField = payloadField
	}
	if flags.Changed("out-dir") {
		request.OutputDir = outputDir
	}
	if flags.Changed("no-write") {
		request.WriteArtifacts = !noWrite
	}
}

// readKeyStoreHex returns the hex key store text, reading it from in when
// value is "-"
func readKeyStoreHex(in io.Reader, value string) (string, error) {
	if value != "-" {
		return value, nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", app.NewError(app.ErrCodeKeyStore, "failed to read hex key store from stdin", err)
	}
	if len(data) == 0 {
		return "", app.NewError(app.ErrCodeInvalidInput, "no hex key store on stdin", nil)
	}
	return string(data), nil
}
