package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/application/commands"
)

var pullCmd = &cobra.Command{
	Use:   "pull <server>",
	Short: "Fetch a server's shared files into the local inbox",
	Long: `Fetch everything the server shares with this host: its global
outbox plus the outbox scoped to this hostname.

Examples:
  shuttle pull homelab
  shuttle pull nas --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		pullCmd := commands.NewPullCommand(GetEnv(), args[0])
		result, err := pullCmd.Execute(ctx)
		if err != nil {
			return err
		}

		fmt.Println(result.Message)
		for _, action := range result.Outcome.Planned {
			fmt.Printf("  would pull: %s\n", action)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)
}
