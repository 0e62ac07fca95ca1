package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/application/commands"
)

var shareTo string

var shareCmd = &cobra.Command{
	Use:   "share <path>...",
	Short: "Offer files for pulling",
	Long: `Copy files into an outbox scope so servers can pull them. Without
--to the files go to the global scope visible to every server;
with --to they are offered to that server only.

Examples:
  shuttle share notes.txt
  shuttle share --to homelab backup.tar.gz`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		shareCmd := commands.NewShareCommand(GetEnv(), shareTo, args)
		result, err := shareCmd.Execute(ctx)
		if err != nil {
			return err
		}

		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	shareCmd.Flags().StringVar(&shareTo, "to", "", "share with one server instead of everyone")
	rootCmd.AddCommand(shareCmd)
}
