package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-findmy/pkg/app"
	"github.com/deploymenttheory/go-findmy/pkg/app/keys"
)

var keysCmd = &cobra.Command{
	Use:   "keys <key-store>",
	Short: "List the identifiers a key store can resolve",
	Long: `Inspect a key store and list every record it holds with its key length.
Key bytes are never printed.

Examples:
  go-findmy keys FMIPDataManager.bplist
  go-findmy keys keys.bplist -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := newAppContext()

		response, err := keys.Handle(ctx, &keys.Request{KeyStorePath: args[0]})
		if err != nil {
			return err
		}

		if err := keys.FormatOutput(cmd.OutOrStdout(), response, ctx.OutputFormat); err != nil {
			return app.NewError(app.ErrCodeOutput, "failed to write report", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
