package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shuttle/internal/application"
	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// PushResult contains the result of a push operation.
type PushResult struct {
	OperationID string
	Outcome     ports.Outcome
	Message     string
}

// PushCommand stages local paths and sends them to one server's inbox
// in a single transfer invocation.
type PushCommand struct {
	env      *Env
	ServerID string
	Paths    []string
}

// NewPushCommand creates a new PushCommand.
func NewPushCommand(env *Env, serverID string, paths []string) *PushCommand {
	return &PushCommand{env: env, ServerID: serverID, Paths: paths}
}

// Validate checks if the push operation is valid.
func (c *PushCommand) Validate() error {
	if err := domain.ValidateServerID(c.ServerID); err != nil {
		return err
	}
	if len(c.Paths) == 0 {
		return fmt.Errorf("push requires at least one path")
	}
	return nil
}

// Execute runs the push command.
func (c *PushCommand) Execute(ctx context.Context) (*PushResult, error) {
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
	remote := domain.RemoteInboxFor(*server, env.LocalName)
	entry := domain.OperationEntry{
		UUID:           opID,
		Operation:      domain.OpPush,
		ServerID:       server.ID,
		SourcePath:     strings.Join(c.Paths, ","),
		DestPath:       server.ID + ":" + remote,
		TimestampStart: start,
		DryRun:         env.DryRun,
	}

	outcome, err := pushStaged(ctx, env, server, opID, remote, c.Paths)
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

	return &PushResult{
		OperationID: opID,
		Outcome:     *outcome,
		Message:     pushMessage(server.ID, outcome, env.DryRun),
	}, nil
}

// pushStaged copies paths into one staging directory and commits it with
// exactly one transfer invocation. The relay push phase reuses it. A dry
// run only inspects the named paths: nothing is staged and nothing sent.
func pushStaged(ctx context.Context, env *Env, server *domain.Server, opID, remote string, paths []string) (*ports.Outcome, error) {
	if env.DryRun {
		outcome := &ports.Outcome{}
		for _, path := range paths {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", path, err)
			}
			outcome.Planned = append(outcome.Planned, filepath.Base(path))
		}
		return outcome, nil
	}

	handle, err := env.Staging.Begin(server.ID, opID)
	if err != nil {
		return nil, err
	}
	failed := true
	defer func() { handle.Discard(failed) }()

	for _, path := range paths {
		if err := handle.Add(path); err != nil {
			return nil, err
		}
	}
	env.logger().Debug("staged batch", "uuid", opID, "server", server.ID, "files", handle.Count())

	outcome, err := env.Transfer.Sync(ctx, ports.SyncRequest{
		Server: *server,
		Remote: remote,
		Local:  handle.Dir,
		Policy: env.Policy,
		DryRun: env.DryRun,
	})
	if err != nil {
		return outcome, err
	}

	if server.S3Backup && !env.DryRun {
		archiveStaged(ctx, env, server, handle.Dir, opID)
	}

	failed = false
	return outcome, nil
}

// archiveStaged copies the staged payload to the server's archival
// bucket. Best-effort: the push already succeeded, so a failure here is
// logged and never changes the operation status.
func archiveStaged(ctx context.Context, env *Env, server *domain.Server, dir, opID string) {
	if env.Archiver == nil || server.S3Bucket == "" {
		return
	}
	prefix := server.ID + "/" + opID
	if err := env.Archiver.Archive(ctx, dir, server.S3Bucket, prefix); err != nil {
		env.logger().Warn("archive failed", "uuid", opID, "server", server.ID, "err", err)
	}
}

func pushMessage(serverID string, outcome *ports.Outcome, dryRun bool) string {
	if dryRun {
		if len(outcome.Planned) == 0 {
			return fmt.Sprintf("Dry run: nothing to transfer to %s", serverID)
		}
		return fmt.Sprintf("Dry run: would transfer %d path(s) to %s", len(outcome.Planned), serverID)
	}
	return fmt.Sprintf("Pushed %d file(s) (%d bytes) to %s", outcome.Transferred, outcome.Bytes, serverID)
}
