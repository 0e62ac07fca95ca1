package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// RelayResult contains the result of a relay operation.
type RelayResult struct {
	OperationID string
	Pulled      ports.Outcome
	Pushed      ports.Outcome
	Selected    int
	Status      domain.OperationStatus
	Message     string
}

// RelayCommand pulls from one server and pushes the result to another.
// Neither server ever contacts the other; the local host mediates. All
// three phases share one operation id.
type RelayCommand struct {
	env    *Env
	FromID string
	ToID   string

	// Selectors optionally restrict the relayed set to matching base
	// names. A selector with no match warns, it never fails the relay.
	Selectors []string
}

// NewRelayCommand creates a new RelayCommand.
func NewRelayCommand(env *Env, fromID, toID string, selectors []string) *RelayCommand {
	return &RelayCommand{env: env, FromID: fromID, ToID: toID, Selectors: selectors}
}

// Validate checks if the relay operation is valid.
func (c *RelayCommand) Validate() error {
	if err := domain.ValidateServerID(c.FromID); err != nil {
		return err
	}
	return domain.ValidateServerID(c.ToID)
}

// Execute runs the relay's three phases in strict order:
// pull, then select, then push. Preflight failure aborts before any
// filesystem mutation; a pull failure aborts before select; a push
// failure after a non-empty select downgrades to PARTIAL because the
// pulled files remain locally and can be re-relayed.
func (c *RelayCommand) Execute(ctx context.Context) (*RelayResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	env := c.env
	from, to, err := env.preflight().CheckRelay(ctx, c.FromID, c.ToID)
	if err != nil {
		return nil, err
	}

	if err := env.Locks.Acquire(LockTransfer); err != nil {
		return nil, err
	}
	defer env.Locks.Release(LockTransfer)

	opID := domain.NewOperationID()
	start := time.Now().UTC()
	inbox := env.Layout.InboxDir(from.ID)
	remote := domain.RemoteInboxFor(*to, from.ID)
	entry := domain.OperationEntry{
		UUID:           opID,
		Operation:      domain.OpRelay,
		ServerID:       domain.RelaySubject(from.ID, to.ID),
		SourcePath:     inbox,
		DestPath:       to.ID + ":" + remote,
		TimestampStart: start,
		DryRun:         env.DryRun,
	}
	result := &RelayResult{OperationID: opID}

	// Phase 1: pull.
	pulled, err := pullOutboxes(ctx, env, from, opID)
	if pulled != nil {
		result.Pulled = *pulled
		entry.BytesTransferred += pulled.Bytes
	}
	if err != nil {
		entry.TimestampEnd = time.Now().UTC()
		entry.Status = domain.StatusFailed
		env.record(entry)
		return nil, fmt.Errorf("relay pull from %s failed: %w", from.ID, err)
	}

	// Phase 2: select.
	selected, err := c.selectCandidates(inbox)
	if err != nil {
		entry.TimestampEnd = time.Now().UTC()
		entry.Status = domain.StatusFailed
		env.record(entry)
		return nil, err
	}
	result.Selected = len(selected)

	// A dry-run pull materializes nothing, so an empty inbox here says
	// nothing about what would move. Report the planned pulls merged
	// with whatever the inbox already holds instead of pushing.
	if env.DryRun {
		planned := c.plannedSet(result.Pulled.Planned, selected)
		result.Selected = len(planned)
		result.Pushed = ports.Outcome{Planned: planned}
		entry.TimestampEnd = time.Now().UTC()
		entry.Status = domain.StatusSuccess
		if err := env.record(entry); err != nil {
			return nil, err
		}
		result.Status = domain.StatusSuccess
		result.Message = relayDryRunMessage(entry.ServerID, planned)
		return result, nil
	}

	// An empty candidate set is a successful no-op, not an error.
	if len(selected) == 0 {
		entry.TimestampEnd = time.Now().UTC()
		entry.Status = domain.StatusSuccess
		if err := env.record(entry); err != nil {
			return nil, err
		}
		result.Status = domain.StatusSuccess
		result.Message = fmt.Sprintf("Relay %s: nothing to relay (0 files)", entry.ServerID)
		return result, nil
	}

	// Phase 3: push the whole candidate set in one staged batch.
	pushed, err := pushStaged(ctx, env, to, opID, remote, selected)
	entry.TimestampEnd = time.Now().UTC()
	if pushed != nil {
		result.Pushed = *pushed
		entry.BytesTransferred += pushed.Bytes
	}
	if err != nil {
		entry.Status = relayPushFailureStatus(inbox)
		env.record(entry)
		return nil, fmt.Errorf("relay push to %s failed: %w", to.ID, err)
	}

	entry.Status = domain.StatusSuccess
	if err := env.record(entry); err != nil {
		return nil, err
	}

	result.Status = domain.StatusSuccess
	result.Message = relayMessage(entry.ServerID, result)
	return result, nil
}

// plannedSet merges the dry-run pull's planned actions with the files
// already present in the inbox, deduplicated by base name and filtered
// by the selectors. "Nothing to relay" is only ever reported when both
// sources are empty.
func (c *RelayCommand) plannedSet(pulledPlanned, selected []string) []string {
	names := make(map[string]bool, len(pulledPlanned)+len(selected))
	for _, path := range selected {
		names[filepath.Base(path)] = true
	}

	match := make(map[string]bool, len(c.Selectors))
	for _, sel := range c.Selectors {
		match[filepath.Base(sel)] = true
	}
	for _, action := range pulledPlanned {
		name := filepath.Base(action)
		if len(match) > 0 && !match[name] {
			continue
		}
		names[name] = true
	}

	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// selectCandidates builds the relay file set from the source inbox.
// With selectors, the set is the intersection of selectors and inbox
// contents; otherwise every entry currently present.
func (c *RelayCommand) selectCandidates(inbox string) ([]string, error) {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Name()] = true
	}

	var selected []string
	if len(c.Selectors) == 0 {
		for _, e := range entries {
			selected = append(selected, filepath.Join(inbox, e.Name()))
		}
		return selected, nil
	}

	for _, sel := range c.Selectors {
		name := filepath.Base(sel)
		if !present[name] {
			c.env.logger().Warn("selector matched nothing", "selector", sel, "inbox", inbox)
			continue
		}
		selected = append(selected, filepath.Join(inbox, name))
	}
	return selected, nil
}

// relayPushFailureStatus distinguishes a retryable partial relay from a
// total failure: if the pulled files are still in the local inbox the
// relay can simply be re-run.
func relayPushFailureStatus(inbox string) domain.OperationStatus {
	entries, err := os.ReadDir(inbox)
	if err == nil && len(entries) > 0 {
		return domain.StatusPartial
	}
	return domain.StatusFailed
}

func relayMessage(subject string, r *RelayResult) string {
	return fmt.Sprintf("Relay %s: pulled %d, pushed %d file(s) (%d bytes)",
		subject, r.Pulled.Transferred, r.Pushed.Transferred, r.Pulled.Bytes+r.Pushed.Bytes)
}

func relayDryRunMessage(subject string, planned []string) string {
	if len(planned) == 0 {
		return fmt.Sprintf("Dry run: relay %s has nothing to relay", subject)
	}
	return fmt.Sprintf("Dry run: relay %s would push %d path(s): %s",
		subject, len(planned), strings.Join(planned, ", "))
}
