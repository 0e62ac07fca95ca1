package ports

import (
	"context"

	"shuttle/internal/domain"
)

// ConflictPolicy controls how the transfer primitive treats files that
// already exist at the destination.
type ConflictPolicy string

const (
	// PolicyUpdate overwrites only when the source is newer. Default.
	PolicyUpdate ConflictPolicy = "update"
	// PolicyChecksum compares content hashes instead of modification
	// times, for hosts with unreliable clocks.
	PolicyChecksum ConflictPolicy = "checksum"
	// PolicyBackup always overwrites but moves the replaced file into a
	// backup namespace first.
	PolicyBackup ConflictPolicy = "backup"
)

// SyncRequest describes one invocation of the transfer primitive.
// Local is always a local directory; Remote a directory under the
// server's remote base. When Pull is set, Remote's contents are synced
// into Local; otherwise Local's contents are synced into Remote.
type SyncRequest struct {
	Server domain.Server
	Pull   bool
	Remote string
	Local  string
	Policy ConflictPolicy
	DryRun bool

	// IgnoreExisting skips files already present at the destination,
	// regardless of Policy. The pull coordinator sets it on the scope
	// pulled second so the first scope wins name collisions.
	IgnoreExisting bool
}

// Outcome reports what one sync invocation did. On a dry run Planned
// lists the actions the primitive would have taken; an empty Planned
// list means nothing matched, which is distinct from a failed run.
type Outcome struct {
	Transferred int
	Bytes       int64
	Planned     []string
}

// TransferExecutor is the capability interface over the external
// delta-transfer tool. The production adapter shells out to rsync;
// tests substitute an in-memory fake.
type TransferExecutor interface {
	Sync(ctx context.Context, req SyncRequest) (*Outcome, error)
}
