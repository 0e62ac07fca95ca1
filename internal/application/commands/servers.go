package commands

import (
	"context"

	"shuttle/internal/domain"
)

// ListServersCommand returns every configured server, disabled ones
// included, for display.
type ListServersCommand struct {
	env *Env
}

// NewListServersCommand creates a new ListServersCommand.
func NewListServersCommand(env *Env) *ListServersCommand {
	return &ListServersCommand{env: env}
}

// Execute runs the list servers command.
func (c *ListServersCommand) Execute(ctx context.Context) ([]domain.Server, error) {
	return c.env.Registry.List()
}
