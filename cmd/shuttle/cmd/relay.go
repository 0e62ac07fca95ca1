package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/application/commands"
)

var (
	relayFrom string
	relayTo   string
)

var relayCmd = &cobra.Command{
	Use:   "relay --from <server> --to <server> [file...]",
	Short: "Pull from one server and push the result to another",
	Long: `Relay files between two servers through this host. The servers
never contact each other: shuttle pulls the source's shared files into
the local inbox, then pushes them to the destination's inbox in one
staged transfer.

Optional file arguments restrict the relay to matching names; a name
with no match is reported but does not fail the relay.

Examples:
  shuttle relay --from homelab --to nas
  shuttle relay --from homelab --to nas report.pdf photos`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		relayCmd := commands.NewRelayCommand(GetEnv(), relayFrom, relayTo, args)
		result, err := relayCmd.Execute(ctx)
		if err != nil {
			return err
		}

		fmt.Println(result.Message)
		for _, action := range result.Pushed.Planned {
			fmt.Printf("  would push: %s\n", action)
		}
		return nil
	},
}

func init() {
	relayCmd.Flags().StringVar(&relayFrom, "from", "", "source server id")
	relayCmd.Flags().StringVar(&relayTo, "to", "", "destination server id")
	relayCmd.MarkFlagRequired("from")
	relayCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(relayCmd)
}
