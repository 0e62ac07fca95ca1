package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/application/commands"
)

var pushCmd = &cobra.Command{
	Use:   "push <server> <path>...",
	Short: "Send files to a server's inbox",
	Long: `Stage the given files and send them to the server's inbox in a
single transfer.

Examples:
  shuttle push homelab report.pdf
  shuttle push nas ./photos ./videos --policy checksum`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		pushCmd := commands.NewPushCommand(GetEnv(), args[0], args[1:])
		result, err := pushCmd.Execute(ctx)
		if err != nil {
			return err
		}

		fmt.Println(result.Message)
		for _, action := range result.Outcome.Planned {
			fmt.Printf("  would transfer: %s\n", action)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
}
