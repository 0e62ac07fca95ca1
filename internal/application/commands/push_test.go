package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shuttle/internal/application"
	"shuttle/internal/domain"
)

func TestPushBatchesOneInvocation(t *testing.T) {
	te := newTestEnv(t)
	src := t.TempDir()
	paths := []string{
		localFile(t, src, "one.txt", "1"),
		localFile(t, src, "two.txt", "2"),
		localFile(t, src, "three.txt", "3"),
	}

	result, err := NewPushCommand(te.Env, "dst", paths).Execute(context.Background())
	if err != nil {
		t.Fatalf("push error = %v", err)
	}

	if calls := te.pushCalls(); len(calls) != 1 {
		t.Errorf("transfer invoked %d times for 3 files, want 1", len(calls))
	}
	if result.Outcome.Transferred != 3 {
		t.Errorf("transferred = %d, want 3", result.Outcome.Transferred)
	}

	// Files land in the destination inbox attributed to this host.
	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		if _, err := os.Stat(filepath.Join(te.transfer.remotes["dst"], "inbox", "hub", name)); err != nil {
			t.Errorf("remote inbox missing %s: %v", name, err)
		}
	}

	entries := te.ledgerEntries(t)
	if len(entries) != 1 || entries[0].Operation != domain.OpPush || entries[0].Status != domain.StatusSuccess {
		t.Errorf("ledger = %+v, want one SUCCESS push entry", entries)
	}

	// Staging removed after success.
	if _, err := os.Stat(filepath.Join(te.base, "staging", "dst", result.OperationID)); !os.IsNotExist(err) {
		t.Error("staging directory survived a successful push")
	}
}

func TestPushUnknownServer(t *testing.T) {
	te := newTestEnv(t)
	path := localFile(t, t.TempDir(), "a.txt", "x")

	_, err := NewPushCommand(te.Env, "ghost", []string{path}).Execute(context.Background())
	if !errors.Is(err, application.ErrServerNotFound) {
		t.Fatalf("push error = %v, want ErrServerNotFound", err)
	}
	if len(te.transfer.calls) != 0 || len(te.ledgerEntries(t)) != 0 {
		t.Error("unknown server push mutated state")
	}
}

func TestPushDisabledServer(t *testing.T) {
	te := newTestEnv(t)
	path := localFile(t, t.TempDir(), "a.txt", "x")

	_, err := NewPushCommand(te.Env, "off", []string{path}).Execute(context.Background())
	if !errors.Is(err, application.ErrServerDisabled) {
		t.Fatalf("push error = %v, want ErrServerDisabled", err)
	}
}

func TestPushMalformedID(t *testing.T) {
	te := newTestEnv(t)
	path := localFile(t, t.TempDir(), "a.txt", "x")

	tests := []string{"", "global", "../etc", "a;rm"}
	for _, id := range tests {
		_, err := NewPushCommand(te.Env, id, []string{path}).Execute(context.Background())
		var idErr *domain.IdentifierError
		if !errors.As(err, &idErr) {
			t.Errorf("push to %q error = %v, want IdentifierError", id, err)
		}
	}
}

func TestPushUnreachable(t *testing.T) {
	te := newTestEnv(t)
	te.prober.down["dst"] = errors.New("timeout")
	path := localFile(t, t.TempDir(), "a.txt", "x")

	_, err := NewPushCommand(te.Env, "dst", []string{path}).Execute(context.Background())
	if !errors.Is(err, application.ErrUnreachable) {
		t.Fatalf("push error = %v, want ErrUnreachable", err)
	}
	if len(te.ledgerEntries(t)) != 0 {
		t.Error("preflight failure appended a ledger entry")
	}
}

func TestPushLockBusy(t *testing.T) {
	te := newTestEnv(t)
	path := localFile(t, t.TempDir(), "a.txt", "x")

	// Another live invocation holds the transfer lock (our own pid).
	if err := te.Locks.Acquire(LockTransfer); err != nil {
		t.Fatal(err)
	}
	defer te.Locks.Release(LockTransfer)

	_, err := NewPushCommand(te.Env, "dst", []string{path}).Execute(context.Background())
	if !errors.Is(err, application.ErrLockBusy) {
		t.Fatalf("push error = %v, want ErrLockBusy", err)
	}
	if len(te.transfer.calls) != 0 || len(te.ledgerEntries(t)) != 0 {
		t.Error("busy lock did not block the transfer")
	}
}

func TestPushReleasesLock(t *testing.T) {
	te := newTestEnv(t)
	path := localFile(t, t.TempDir(), "a.txt", "x")

	if _, err := NewPushCommand(te.Env, "dst", []string{path}).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Lock must be free for the next invocation.
	if err := te.Locks.Acquire(LockTransfer); err != nil {
		t.Errorf("lock still held after push: %v", err)
	}
}

func TestPushDryRun(t *testing.T) {
	te := newTestEnv(t)
	te.DryRun = true
	path := localFile(t, t.TempDir(), "a.txt", "x")

	result, err := NewPushCommand(te.Env, "dst", []string{path}).Execute(context.Background())
	if err != nil {
		t.Fatalf("dry-run push error = %v", err)
	}

	if len(result.Outcome.Planned) != 1 {
		t.Errorf("planned = %v, want 1 action", result.Outcome.Planned)
	}
	if _, err := os.Stat(filepath.Join(te.transfer.remotes["dst"], "inbox", "hub", "a.txt")); !os.IsNotExist(err) {
		t.Error("dry run materialized a remote file")
	}
	// Path computation only: no staged copies and no transfer invocation.
	if _, err := os.Stat(filepath.Join(te.base, "staging")); !os.IsNotExist(err) {
		t.Error("dry run created a staging directory")
	}
	if len(te.transfer.calls) != 0 {
		t.Errorf("dry run invoked the transfer engine %d times", len(te.transfer.calls))
	}

	entries := te.ledgerEntries(t)
	if len(entries) != 1 || !entries[0].DryRun {
		t.Errorf("ledger = %+v, want one dry-run entry", entries)
	}
}

func TestPushMissingSourceStillLogs(t *testing.T) {
	te := newTestEnv(t)

	_, err := NewPushCommand(te.Env, "dst", []string{"/nonexistent/file.txt"}).Execute(context.Background())
	if err == nil {
		t.Fatal("push of missing source succeeded")
	}

	entries := te.ledgerEntries(t)
	if len(entries) != 1 || entries[0].Status != domain.StatusFailed {
		t.Errorf("ledger = %+v, want one FAILED entry", entries)
	}
}
