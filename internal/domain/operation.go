package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationKind identifies the logical action recorded in the ledger.
type OperationKind string

const (
	OpPush  OperationKind = "push"
	OpPull  OperationKind = "pull"
	OpRelay OperationKind = "relay"
	OpShare OperationKind = "share"
)

// OperationStatus is the final status of a completed operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusPartial OperationStatus = "PARTIAL"
	StatusFailed  OperationStatus = "FAILED"
)

// NewOperationID generates the correlation token shared by every phase
// of one logical operation.
func NewOperationID() string {
	return uuid.NewString()
}

// RelaySubject builds the ledger subject for a relay between two servers.
func RelaySubject(from, to string) string {
	return from + "->" + to
}

// OperationEntry is one immutable ledger record. Field names follow the
// sync.jsonl wire format.
type OperationEntry struct {
	UUID             string          `json:"uuid"`
	Operation        OperationKind   `json:"operation"`
	ServerID         string          `json:"server_id"`
	SourcePath       string          `json:"source_path"`
	DestPath         string          `json:"dest_path"`
	TimestampStart   time.Time       `json:"timestamp_start"`
	TimestampEnd     time.Time       `json:"timestamp_end"`
	Status           OperationStatus `json:"status"`
	BytesTransferred int64           `json:"bytes_transferred"`
	DryRun           bool            `json:"dry_run"`
}
