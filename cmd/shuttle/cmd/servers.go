package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"shuttle/internal/application/commands"
)

var (
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List configured servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		listCmd := commands.NewListServersCommand(GetEnv())
		servers, err := listCmd.Execute(ctx)
		if err != nil {
			return err
		}

		if len(servers) == 0 {
			fmt.Println("No servers configured. Add one to servers.toml first.")
			return nil
		}

		for _, s := range servers {
			status := enabledStyle.Render("enabled ")
			if !s.Enabled {
				status = disabledStyle.Render("disabled")
			}
			fmt.Printf("%s  %-20s %s@%s:%d  %s\n", status, s.ID, s.User, s.Host, s.Port, s.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serversCmd)
}
