package commands

import (
	"context"
	"io/fs"
	"path/filepath"

	"shuttle/internal/domain"
)

// StatusResult summarizes the local namespace and recent activity.
type StatusResult struct {
	InboxFiles  int
	OutboxFiles int
	Recent      []domain.OperationEntry
}

// StatusCommand reports inbox/outbox file counts and the most recent
// ledger entries. It is a lock-free read.
type StatusCommand struct {
	env *Env

	// RecentLimit bounds the recent-operations list.
	RecentLimit int
}

// NewStatusCommand creates a new StatusCommand.
func NewStatusCommand(env *Env, recentLimit int) *StatusCommand {
	return &StatusCommand{env: env, RecentLimit: recentLimit}
}

// Execute runs the status command.
func (c *StatusCommand) Execute(ctx context.Context) (*StatusResult, error) {
	base := c.env.Layout.Base
	result := &StatusResult{
		InboxFiles:  countFiles(filepath.Join(base, "local", "inbox")),
		OutboxFiles: countFiles(filepath.Join(base, "local", "outbox")),
	}

	recent, err := c.env.Ledger.Recent(c.RecentLimit)
	if err != nil {
		return nil, err
	}
	result.Recent = recent
	return result, nil
}

// countFiles counts regular files under root. A missing root counts as
// zero; this is a display helper, not an audit.
func countFiles(root string) int {
	count := 0
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}
