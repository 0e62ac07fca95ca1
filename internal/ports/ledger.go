package ports

import "shuttle/internal/domain"

// OperationLedger is the append-only record of completed operations.
// Entries are immutable once appended.
type OperationLedger interface {
	Append(entry domain.OperationEntry) error

	// All returns every entry in append order.
	All() ([]domain.OperationEntry, error)

	// Recent returns up to limit entries, newest first.
	Recent(limit int) ([]domain.OperationEntry, error)
}

// HistoryFilter narrows an operation history query. Zero values match
// everything; Limit <= 0 means no limit.
type HistoryFilter struct {
	ServerID string
	Kind     domain.OperationKind
	Status   domain.OperationStatus
	Limit    int
}

// OperationIndex is a queryable view over the ledger for audit queries.
// Ingest is idempotent: entries whose operation id is already indexed
// are skipped.
type OperationIndex interface {
	Open(path string) error
	Close() error
	Ingest(entries []domain.OperationEntry) (int, error)
	Query(filter HistoryFilter) ([]domain.OperationEntry, error)
}
