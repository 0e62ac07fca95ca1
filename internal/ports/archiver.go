package ports

import "context"

// Archiver copies a local directory tree to a remote object store.
// Best-effort: callers log failures but never fail the operation on one.
type Archiver interface {
	Archive(ctx context.Context, localDir, bucket, prefix string) error
}
