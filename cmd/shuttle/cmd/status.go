package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/application/commands"
	"shuttle/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show inbox/outbox contents and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		statusCmd := commands.NewStatusCommand(GetEnv(), 5)
		result, err := statusCmd.Execute(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Inbox: %d file(s)   Outbox: %d file(s)\n", result.InboxFiles, result.OutboxFiles)

		if len(result.Recent) == 0 {
			return nil
		}
		fmt.Println("\nRecent operations:")
		for _, e := range result.Recent {
			marker := statusMarker(e.Status)
			fmt.Printf("  %s %s %-7s %s\n", marker,
				e.TimestampEnd.Format("2006-01-02 15:04"), e.Operation, e.ServerID)
		}
		return nil
	},
}

func statusMarker(s domain.OperationStatus) string {
	switch s {
	case domain.StatusSuccess:
		return enabledStyle.Render("ok")
	case domain.StatusPartial:
		return disabledStyle.Render("~~")
	default:
		return disabledStyle.Render("!!")
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
