package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/staging"
)

// ShareResult contains the result of a share operation.
type ShareResult struct {
	OperationID string
	Shared      int
	DestDir     string
	Message     string
}

// ShareCommand copies local paths into an outbox scope, making them
// available for pulling. With an empty ToServerID the files go to the
// global scope visible to every server.
type ShareCommand struct {
	env        *Env
	ToServerID string
	Paths      []string
}

// NewShareCommand creates a new ShareCommand.
func NewShareCommand(env *Env, toServerID string, paths []string) *ShareCommand {
	return &ShareCommand{env: env, ToServerID: toServerID, Paths: paths}
}

// Validate checks if the share operation is valid.
func (c *ShareCommand) Validate() error {
	if len(c.Paths) == 0 {
		return fmt.Errorf("share requires at least one path")
	}
	if c.ToServerID != "" {
		return domain.ValidateServerID(c.ToServerID)
	}
	return nil
}

// Execute runs the share command. Sharing is local-only: no remote
// reachability is required, but a scoped share still has to name a
// registered server so a typo cannot create a dead outbox scope.
func (c *ShareCommand) Execute(ctx context.Context) (*ShareResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	env := c.env
	subject := domain.ReservedScope
	destDir := env.Layout.OutboxGlobalDir()
	if c.ToServerID != "" {
		server, err := env.Registry.Resolve(c.ToServerID)
		if err != nil {
			return nil, err
		}
		subject = server.ID
		destDir = env.Layout.OutboxServerDir(server.ID)
	}

	if err := env.Locks.Acquire(LockTransfer); err != nil {
		return nil, err
	}
	defer env.Locks.Release(LockTransfer)

	opID := domain.NewOperationID()
	start := time.Now().UTC()
	entry := domain.OperationEntry{
		UUID:           opID,
		Operation:      domain.OpShare,
		ServerID:       subject,
		SourcePath:     strings.Join(c.Paths, ","),
		DestPath:       destDir,
		TimestampStart: start,
		DryRun:         env.DryRun,
	}

	shared := 0
	if !env.DryRun {
		for _, path := range c.Paths {
			if err := staging.CopyInto(destDir, path); err != nil {
				entry.TimestampEnd = time.Now().UTC()
				entry.Status = domain.StatusFailed
				if shared > 0 {
					entry.Status = domain.StatusPartial
				}
				env.record(entry)
				return nil, err
			}
			shared++
		}
	}

	entry.TimestampEnd = time.Now().UTC()
	entry.Status = domain.StatusSuccess
	if err := env.record(entry); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Shared %d path(s) into %s scope", shared, subject)
	if env.DryRun {
		msg = fmt.Sprintf("Dry run: would share %d path(s) into %s scope", len(c.Paths), subject)
	}
	return &ShareResult{
		OperationID: opID,
		Shared:      shared,
		DestDir:     destDir,
		Message:     msg,
	}, nil
}
