package commands

import (
	"io"
	"log/slog"
	"time"

	"shuttle/internal/application"
	"shuttle/internal/domain"
	"shuttle/internal/lockfile"
	"shuttle/internal/ports"
	"shuttle/internal/staging"
)

// LockTransfer is the lock name shared by every mutating operation.
// Transfers are single-writer; reads never take it.
const LockTransfer = "transfer"

// Env carries the capabilities and run-scoped settings every command
// needs. Commands receive it explicitly instead of reading ambient
// state, so a relay that acts for two servers in turn never leaks one
// phase's context into the next.
type Env struct {
	Registry ports.ServerRegistry
	Transfer ports.TransferExecutor
	Prober   ports.ReachabilityProber
	Ledger   ports.OperationLedger
	Archiver ports.Archiver
	Locks    *lockfile.Manager
	Staging  *staging.Manager
	Layout   domain.Layout
	Log      *slog.Logger

	// LocalName is this machine's name in remote namespaces.
	LocalName string

	Policy       ports.ConflictPolicy
	DryRun       bool
	SkipProbe    bool
	ProbeTimeout time.Duration
}

func (e *Env) preflight() *application.Preflight {
	return &application.Preflight{
		Registry:     e.Registry,
		Prober:       e.Prober,
		ProbeTimeout: e.ProbeTimeout,
		SkipProbe:    e.SkipProbe,
	}
}

func (e *Env) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// record appends the operation's ledger entry. Every completed
// operation, including failures and dry runs, leaves exactly one entry.
func (e *Env) record(entry domain.OperationEntry) error {
	if err := e.Ledger.Append(entry); err != nil {
		e.logger().Error("ledger append failed", "uuid", entry.UUID, "err", err)
		return err
	}
	e.logger().Info("operation recorded",
		"uuid", entry.UUID,
		"operation", string(entry.Operation),
		"subject", entry.ServerID,
		"status", string(entry.Status),
		"bytes", entry.BytesTransferred,
		"dry_run", entry.DryRun,
	)
	return nil
}
