// Package sqlite provides a queryable history index over the operation
// ledger, so audit queries do not re-scan the JSONL file every time.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

const schemaVersion = "1"

// Index implements ports.OperationIndex using SQLite. The ledger stays
// the source of truth; the index is derived and can be rebuilt from it.
type Index struct {
	db     *sql.DB
	dbPath string
}

// Ensure Index implements OperationIndex
var _ ports.OperationIndex = (*Index)(nil)

// NewIndex creates a new SQLite history index.
func NewIndex() *Index {
	return &Index{}
}

// Open initializes the index database at dbPath.
func (idx *Index) Open(dbPath string) error {
	idx.dbPath = dbPath

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// WAL mode so a history query can run alongside an ingest.
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS operations (
			uuid TEXT PRIMARY KEY,
			operation TEXT NOT NULL,
			server_id TEXT NOT NULL,
			source_path TEXT,
			dest_path TEXT,
			timestamp_start INTEGER NOT NULL,
			timestamp_end INTEGER NOT NULL,
			status TEXT NOT NULL,
			bytes_transferred INTEGER NOT NULL DEFAULT 0,
			dry_run INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_operations_server ON operations(server_id);
		CREATE INDEX IF NOT EXISTS idx_operations_status ON operations(status);
		CREATE INDEX IF NOT EXISTS idx_operations_end ON operations(timestamp_end);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if err := idx.checkSchema(); err != nil {
		db.Close()
		return err
	}

	return nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// checkSchema drops and recreates the derived table when the schema
// version changed; the next ingest repopulates it from the ledger.
func (idx *Index) checkSchema() error {
	var version string
	idx.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&version)

	if version != "" && version != schemaVersion {
		if _, err := idx.db.Exec(`DELETE FROM operations`); err != nil {
			return fmt.Errorf("failed to reset index: %w", err)
		}
	}

	_, err := idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		schemaVersion)
	return err
}

// Ingest adds ledger entries to the index, skipping operation ids that
// are already present, and returns how many were added.
func (idx *Index) Ingest(entries []domain.OperationEntry) (int, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin ingest: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, e := range entries {
		res, err := tx.Exec(`
			INSERT OR IGNORE INTO operations
			(uuid, operation, server_id, source_path, dest_path,
			 timestamp_start, timestamp_end, status, bytes_transferred, dry_run)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.UUID, string(e.Operation), e.ServerID, e.SourcePath, e.DestPath,
			e.TimestampStart.Unix(), e.TimestampEnd.Unix(), string(e.Status),
			e.BytesTransferred, boolToInt(e.DryRun))
		if err != nil {
			return added, fmt.Errorf("failed to index entry %s: %w", e.UUID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err := tx.Commit(); err != nil {
		return added, fmt.Errorf("failed to commit ingest: %w", err)
	}

	idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_ingest_time', ?)`,
		time.Now().Unix())
	return added, nil
}

// Query returns indexed operations matching the filter, newest first.
func (idx *Index) Query(filter ports.HistoryFilter) ([]domain.OperationEntry, error) {
	query := `
		SELECT uuid, operation, server_id, source_path, dest_path,
		       timestamp_start, timestamp_end, status, bytes_transferred, dry_run
		FROM operations WHERE 1=1`
	var args []any

	if filter.ServerID != "" {
		query += ` AND server_id = ?`
		args = append(args, filter.ServerID)
	}
	if filter.Kind != "" {
		query += ` AND operation = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY timestamp_end DESC, uuid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []domain.OperationEntry
	for rows.Next() {
		var e domain.OperationEntry
		var op, status string
		var start, end int64
		var dryRun int
		if err := rows.Scan(&e.UUID, &op, &e.ServerID, &e.SourcePath, &e.DestPath,
			&start, &end, &status, &e.BytesTransferred, &dryRun); err != nil {
			return entries, err
		}
		e.Operation = domain.OperationKind(op)
		e.Status = domain.OperationStatus(status)
		e.TimestampStart = time.Unix(start, 0).UTC()
		e.TimestampEnd = time.Unix(end, 0).UTC()
		e.DryRun = dryRun != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
