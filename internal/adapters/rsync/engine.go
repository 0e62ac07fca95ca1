// Package rsync implements the transfer engine by shelling out to the
// rsync binary over ssh.
package rsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"shuttle/internal/application"
	"shuttle/internal/config"
	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// rsync exit codes that mean "ran, but some files did not move".
const (
	exitPartialTransfer = 23
	exitPartialVanished = 24
)

// Engine implements ports.TransferExecutor. Binary defaults to "rsync"
// and exists so tests can point at a stub.
type Engine struct {
	Binary string
}

var _ ports.TransferExecutor = (*Engine)(nil)

// New returns an Engine invoking the system rsync.
func New() *Engine {
	return &Engine{Binary: "rsync"}
}

// Sync runs one rsync invocation for the request. The contents of the
// source directory are synced into the destination directory; trailing
// slashes on the source spec carry that semantic for rsync.
func (e *Engine) Sync(ctx context.Context, req ports.SyncRequest) (*ports.Outcome, error) {
	args := buildArgs(req)

	cmd := exec.CommandContext(ctx, e.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := parseOutcome(stdout.String(), req.DryRun)

	if err == nil {
		return outcome, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("failed to run %s: %w", e.Binary, err)
	}

	code := exitErr.ExitCode()
	switch code {
	case exitPartialTransfer, exitPartialVanished:
		// A pull source that simply has no scoped outbox yet is not a
		// failure: nothing was ever shared with this host.
		if req.Pull && strings.Contains(stderr.String(), "No such file or directory") {
			return outcome, nil
		}
		return outcome, &application.PartialTransferError{
			Transferred: outcome.Transferred,
			Reason:      firstLine(stderr.String()),
		}
	default:
		return nil, &application.TransferError{ExitCode: code, Stderr: firstLine(stderr.String())}
	}
}

// buildArgs translates a SyncRequest into rsync arguments.
func buildArgs(req ports.SyncRequest) []string {
	args := []string{"--archive", "--itemize-changes", "--stats"}

	switch req.Policy {
	case ports.PolicyChecksum:
		args = append(args, "--checksum")
	case ports.PolicyBackup:
		args = append(args, "--backup", "--backup-dir=.shuttle-backup")
	default:
		args = append(args, "--update")
	}

	if req.IgnoreExisting {
		args = append(args, "--ignore-existing")
	}
	if req.DryRun {
		args = append(args, "--dry-run")
	}

	args = append(args, "-e", sshCommand(req.Server))

	remote := req.Server.Addr() + ":" + req.Remote
	if req.Pull {
		args = append(args, remote+"/", req.Local)
	} else {
		// --mkpath creates missing remote namespace directories so a
		// first push to a fresh server does not need a manual setup step.
		args = append(args, "--mkpath", req.Local+"/", remote)
	}
	return args
}

// sshCommand builds the remote-shell invocation from the server record.
func sshCommand(s domain.Server) string {
	parts := []string{"ssh", "-o", "BatchMode=yes"}
	if s.Port != 0 && s.Port != 22 {
		parts = append(parts, "-p", fmt.Sprint(s.Port))
	}
	if s.IdentityFile != "" {
		parts = append(parts, "-i", config.ExpandHome(s.IdentityFile))
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
