// Package jsonl implements the operation ledger as an append-only file
// of one JSON record per line.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// Ledger appends operation entries to a sync.jsonl file. Entries are
// never rewritten; a torn line from a crashed writer is skipped on read.
type Ledger struct {
	Path string
}

var _ ports.OperationLedger = (*Ledger)(nil)

// New returns a Ledger at path.
func New(path string) *Ledger {
	return &Ledger{Path: path}
}

// Append writes one entry as a single line.
func (l *Ledger) Append(entry domain.OperationEntry) error {
	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode ledger entry: %w", err)
	}

	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return f.Sync()
}

// All returns every entry in append order. A missing ledger file reads
// as empty.
func (l *Ledger) All() ([]domain.OperationEntry, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	var entries []domain.OperationEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry domain.OperationEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue // torn or foreign line
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read ledger: %w", err)
	}
	return entries, nil
}

// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(limit int) ([]domain.OperationEntry, error) {
	entries, err := l.All()
	if err != nil {
		return nil, err
	}

	out := make([]domain.OperationEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
