package commands

import (
	"context"
	"fmt"

	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// HistoryCommand queries the operation history index, ingesting any
// ledger entries appended since the last query first.
type HistoryCommand struct {
	env    *Env
	Index  ports.OperationIndex
	Filter ports.HistoryFilter
}

// NewHistoryCommand creates a new HistoryCommand.
func NewHistoryCommand(env *Env, index ports.OperationIndex, filter ports.HistoryFilter) *HistoryCommand {
	return &HistoryCommand{env: env, Index: index, Filter: filter}
}

// Execute runs the history query. History is a read: it takes no lock
// and tolerates an in-flight operation not yet being visible.
func (c *HistoryCommand) Execute(ctx context.Context) ([]domain.OperationEntry, error) {
	if err := c.Index.Open(c.env.Layout.IndexPath()); err != nil {
		return nil, err
	}
	defer c.Index.Close()

	entries, err := c.env.Ledger.All()
	if err != nil {
		return nil, err
	}
	added, err := c.Index.Ingest(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest ledger: %w", err)
	}
	if added > 0 {
		c.env.logger().Debug("history index updated", "added", added)
	}

	return c.Index.Query(c.Filter)
}
