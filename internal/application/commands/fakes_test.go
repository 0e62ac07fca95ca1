package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shuttle/internal/adapters/jsonl"
	"shuttle/internal/application"
	"shuttle/internal/domain"
	"shuttle/internal/lockfile"
	"shuttle/internal/ports"
	"shuttle/internal/staging"
)

// fakeRegistry resolves servers from a fixed map.
type fakeRegistry struct {
	servers map[string]domain.Server
}

func (r *fakeRegistry) Resolve(id string) (*domain.Server, error) {
	s, ok := r.servers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", application.ErrServerNotFound, id)
	}
	if !s.Enabled {
		return nil, fmt.Errorf("%w: %s", application.ErrServerDisabled, id)
	}
	return &s, nil
}

func (r *fakeRegistry) List() ([]domain.Server, error) {
	var out []domain.Server
	for _, s := range r.servers {
		out = append(out, s)
	}
	return out, nil
}

// fakeProber fails for server ids present in down.
type fakeProber struct {
	down map[string]error
}

func (p *fakeProber) Probe(_ context.Context, server domain.Server, _ time.Duration) error {
	if err, ok := p.down[server.ID]; ok {
		return err
	}
	return nil
}

// fakeTransfer simulates remote hosts as local directories. Each
// server's remote base maps to a temp dir; Sync copies files between it
// and the request's local directory with source mtimes preserved,
// honoring IgnoreExisting, the update policy's skip-if-newer rule, and
// skipping files whose content is already identical.
type fakeTransfer struct {
	remotes map[string]string // server id -> dir standing in for RemoteBase
	calls   []ports.SyncRequest
	failOn  func(req ports.SyncRequest) error
}

func (f *fakeTransfer) resolveRemote(req ports.SyncRequest) string {
	rel := strings.TrimPrefix(req.Remote, req.Server.RemoteBase)
	return filepath.Join(f.remotes[req.Server.ID], filepath.FromSlash(rel))
}

func (f *fakeTransfer) Sync(_ context.Context, req ports.SyncRequest) (*ports.Outcome, error) {
	f.calls = append(f.calls, req)
	if f.failOn != nil {
		if err := f.failOn(req); err != nil {
			return nil, err
		}
	}

	src, dst := f.resolveRemote(req), req.Local
	if !req.Pull {
		src, dst = req.Local, f.resolveRemote(req)
	}

	outcome := &ports.Outcome{}
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil // a missing source scope is "nothing shared", not an error
		}
		rel, _ := filepath.Rel(src, path)
		target := filepath.Join(dst, rel)

		if tinfo, err := os.Stat(target); err == nil {
			if req.IgnoreExisting {
				return nil
			}
			if req.Policy == ports.PolicyUpdate && tinfo.ModTime().After(info.ModTime()) {
				return nil // destination newer, --update skips it
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
			return nil // up to date
		}

		if req.DryRun {
			outcome.Planned = append(outcome.Planned, rel)
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		if err := os.Chtimes(target, info.ModTime(), info.ModTime()); err != nil {
			return err
		}
		outcome.Transferred++
		outcome.Bytes += int64(len(data))
		return nil
	})
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

// testEnv bundles an Env with its fakes and backing directories.
type testEnv struct {
	*Env
	transfer *fakeTransfer
	prober   *fakeProber
	ledger   *jsonl.Ledger
	base     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	base := t.TempDir()
	layout := domain.Layout{Base: base}

	servers := map[string]domain.Server{
		"src": {ID: "src", Host: "10.0.0.1", Port: 22, User: "u", RemoteBase: "/remote/src", Enabled: true},
		"dst": {ID: "dst", Host: "10.0.0.2", Port: 22, User: "u", RemoteBase: "/remote/dst", Enabled: true},
		"off": {ID: "off", Host: "10.0.0.3", Port: 22, User: "u", RemoteBase: "/remote/off", Enabled: false},
	}
	transfer := &fakeTransfer{remotes: map[string]string{
		"src": t.TempDir(),
		"dst": t.TempDir(),
	}}
	prober := &fakeProber{down: map[string]error{}}
	ledger := jsonl.New(layout.LedgerPath())

	env := &Env{
		Registry:  &fakeRegistry{servers: servers},
		Transfer:  transfer,
		Prober:    prober,
		Ledger:    ledger,
		Locks:     lockfile.New(filepath.Join(base, "locks")),
		Staging:   &staging.Manager{Layout: layout},
		Layout:    layout,
		LocalName: "hub",
		Policy:    ports.PolicyUpdate,
	}
	return &testEnv{Env: env, transfer: transfer, prober: prober, ledger: ledger, base: base}
}

// remoteWrite plants a file on a fake server under a path relative to
// its remote base.
func (te *testEnv) remoteWrite(t *testing.T, serverID, rel, content string) {
	t.Helper()
	path := filepath.Join(te.transfer.remotes[serverID], filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (te *testEnv) remoteRead(t *testing.T, serverID, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(te.transfer.remotes[serverID], filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("remote read %s/%s: %v", serverID, rel, err)
	}
	return string(data)
}

func (te *testEnv) ledgerEntries(t *testing.T) []domain.OperationEntry {
	t.Helper()
	entries, err := te.ledger.All()
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func (te *testEnv) pushCalls() []ports.SyncRequest {
	var out []ports.SyncRequest
	for _, c := range te.transfer.calls {
		if !c.Pull {
			out = append(out, c)
		}
	}
	return out
}

func localFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
