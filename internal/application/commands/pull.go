package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"shuttle/internal/application"
	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// PullResult contains the result of a pull operation.
type PullResult struct {
	OperationID string
	Outcome     ports.Outcome
	Message     string
}

// PullCommand fetches a server's shared files into the local inbox.
type PullCommand struct {
	env      *Env
	ServerID string
}

// NewPullCommand creates a new PullCommand.
func NewPullCommand(env *Env, serverID string) *PullCommand {
	return &PullCommand{env: env, ServerID: serverID}
}

// Validate checks if the pull operation is valid.
func (c *PullCommand) Validate() error {
	return domain.ValidateServerID(c.ServerID)
}

// Execute runs the pull command.
func (c *PullCommand) Execute(ctx context.Context) (*PullResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	env := c.env
	server, err := env.preflight().CheckServer(ctx, c.ServerID)
	if err != nil {
		return nil, err
	}

	if err := env.Locks.Acquire(LockTransfer); err != nil {
		return nil, err
	}
	defer env.Locks.Release(LockTransfer)

	opID := domain.NewOperationID()
	start := time.Now().UTC()
	inbox := env.Layout.InboxDir(server.ID)
	entry := domain.OperationEntry{
		UUID:           opID,
		Operation:      domain.OpPull,
		ServerID:       server.ID,
		SourcePath:     server.ID + ":" + domain.RemoteOutboxGlobal(*server),
		DestPath:       inbox,
		TimestampStart: start,
		DryRun:         env.DryRun,
	}

	outcome, err := pullOutboxes(ctx, env, server, opID)
	entry.TimestampEnd = time.Now().UTC()
	if outcome != nil {
		entry.BytesTransferred = outcome.Bytes
	}
	if err != nil {
		entry.Status = domain.StatusFailed
		if errors.As(err, new(*application.PartialTransferError)) {
			entry.Status = domain.StatusPartial
		}
		env.record(entry)
		return nil, err
	}

	entry.Status = domain.StatusSuccess
	if err := env.record(entry); err != nil {
		return nil, err
	}

	return &PullResult{
		OperationID: opID,
		Outcome:     *outcome,
		Message:     pullMessage(server.ID, outcome, env.DryRun),
	}, nil
}

// pullOutboxes fetches exactly two remote namespace roots: the source's
// outbox scoped to this host and its global outbox. No other server's
// scope is ever enumerated. The scoped outbox is pulled first and the
// global pass skips files already present, so files shared specifically
// with this host win name collisions no matter which side carries the
// newer timestamp. The relay pull phase reuses it.
func pullOutboxes(ctx context.Context, env *Env, server *domain.Server, opID string) (*ports.Outcome, error) {
	inbox := env.Layout.InboxDir(server.ID)
	if !env.DryRun {
		if err := os.MkdirAll(inbox, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create inbox: %w", err)
		}
	}

	combined := &ports.Outcome{}
	requests := []ports.SyncRequest{
		{Remote: domain.RemoteOutboxFor(*server, env.LocalName)},
		{Remote: domain.RemoteOutboxGlobal(*server), IgnoreExisting: true},
	}
	for _, req := range requests {
		req.Server = *server
		req.Pull = true
		req.Local = inbox
		req.Policy = env.Policy
		req.DryRun = env.DryRun
		env.logger().Debug("pull phase", "uuid", opID, "server", server.ID, "remote", req.Remote)
		outcome, err := env.Transfer.Sync(ctx, req)
		if outcome != nil {
			combined.Transferred += outcome.Transferred
			combined.Bytes += outcome.Bytes
			combined.Planned = append(combined.Planned, outcome.Planned...)
		}
		if err != nil {
			return combined, err
		}
	}
	return combined, nil
}

func pullMessage(serverID string, outcome *ports.Outcome, dryRun bool) string {
	if dryRun {
		if len(outcome.Planned) == 0 {
			return fmt.Sprintf("Dry run: nothing to pull from %s", serverID)
		}
		return fmt.Sprintf("Dry run: would pull %d path(s) from %s", len(outcome.Planned), serverID)
	}
	return fmt.Sprintf("Pulled %d file(s) (%d bytes) from %s", outcome.Transferred, outcome.Bytes, serverID)
}
