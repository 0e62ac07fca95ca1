package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/adapters/sqlite"
	"shuttle/internal/application/commands"
	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

var (
	historyServer string
	historyKind   string
	historyStatus string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past operations",
	Long: `Query the operation ledger. Every push, pull, relay, and share
leaves one entry, failures included.

Examples:
  shuttle history
  shuttle history --server homelab --status FAILED
  shuttle history --kind relay -l 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		filter := ports.HistoryFilter{
			ServerID: historyServer,
			Kind:     domain.OperationKind(historyKind),
			Status:   domain.OperationStatus(historyStatus),
			Limit:    historyLimit,
		}
		histCmd := commands.NewHistoryCommand(GetEnv(), sqlite.NewIndex(), filter)
		entries, err := histCmd.Execute(ctx)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, e := range entries {
			dry := ""
			if e.DryRun {
				dry = " (dry run)"
			}
			fmt.Printf("%s  %-7s %-8s %-24s %d bytes%s\n",
				e.TimestampEnd.Format("2006-01-02 15:04:05"),
				e.Status, e.Operation, e.ServerID, e.BytesTransferred, dry)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyServer, "server", "", "filter by server id or relay subject")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "filter by operation kind: push, pull, relay, share")
	historyCmd.Flags().StringVar(&historyStatus, "status", "", "filter by status: SUCCESS, PARTIAL, FAILED")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum entries to show")
	rootCmd.AddCommand(historyCmd)
}
