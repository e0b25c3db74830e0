package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-findmy/pkg/app/seal"
)

var (
	sealKeyStore string
	sealTarget   string
	sealOut      string
)

var sealCmd = &cobra.Command{
	Use:   "seal <plaintext-file>",
	Short: "Encrypt a plaintext into a cache file",
	Long: `Encrypt a file with the key a key store resolves for a target and write it
as a cache file, with a random nonce. Useful for building test fixtures.

Examples:
  go-findmy seal Items.plist --key-store FMIPDataManager.bplist --target com.apple.findmy.fmipcore --out Items.data`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext()

		response, err := seal.Handle(ctx, &seal.Request{
			PlaintextPath: args[0],
			KeyStorePath:  sealKeyStore,
			TargetID:      sealTarget,
			OutPath:       sealOut,
			PayloadField:  cfg.PayloadField,
		})
		if err != nil {
			return err
		}

		if !ctx.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d byte payload for %s)\n",
				response.OutPath, response.PayloadSize, response.TargetID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sealCmd)

	sealCmd.Flags().StringVarP(&sealKeyStore, "key-store", "k", "", "key store property list")
	sealCmd.Flags().StringVarP(&sealTarget, "target", "t", "", "key store identifier")
	sealCmd.Flags().StringVar(&sealOut, "out", "", "cache file to write")
	sealCmd.MarkFlagRequired("key-store")
	sealCmd.MarkFlagRequired("target")
	sealCmd.MarkFlagRequired("out")
}
