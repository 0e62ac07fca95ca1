package rsync

import (
	"strings"
	"testing"

	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

func testServer() domain.Server {
	return domain.Server{
		ID:         "nas",
		Host:       "10.0.0.5",
		Port:       22,
		User:       "alice",
		RemoteBase: "/home/alice/.sync-shuttle",
	}
}

func TestBuildArgsPush(t *testing.T) {
	args := buildArgs(ports.SyncRequest{
		Server: testServer(),
		Local:  "/tmp/stage",
		Remote: "/home/alice/.sync-shuttle/inbox/laptop",
		Policy: ports.PolicyUpdate,
	})
	joined := strings.Join(args, " ")

	for _, want := range []string{"--archive", "--update", "--stats", "--mkpath"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %s: %s", want, joined)
		}
	}
	if args[len(args)-2] != "/tmp/stage/" {
		t.Errorf("push source = %q, want trailing slash on local dir", args[len(args)-2])
	}
	if args[len(args)-1] != "alice@10.0.0.5:/home/alice/.sync-shuttle/inbox/laptop" {
		t.Errorf("push dest = %q", args[len(args)-1])
	}
}

func TestBuildArgsPull(t *testing.T) {
	args := buildArgs(ports.SyncRequest{
		Server: testServer(),
		Pull:   true,
		Remote: "/home/alice/.sync-shuttle/outbox/global",
		Local:  "/data/inbox/nas",
		Policy: ports.PolicyUpdate,
	})

	if args[len(args)-2] != "alice@10.0.0.5:/home/alice/.sync-shuttle/outbox/global/" {
		t.Errorf("pull source = %q, want trailing slash on remote dir", args[len(args)-2])
	}
	if args[len(args)-1] != "/data/inbox/nas" {
		t.Errorf("pull dest = %q", args[len(args)-1])
	}
	if strings.Contains(strings.Join(args, " "), "--mkpath") {
		t.Error("pull should not pass --mkpath")
	}
}

func TestBuildArgsPolicies(t *testing.T) {
	tests := []struct {
		policy  ports.ConflictPolicy
		want    string
		forbids string
	}{
		{ports.PolicyUpdate, "--update", "--checksum"},
		{ports.PolicyChecksum, "--checksum", "--update"},
		{ports.PolicyBackup, "--backup", "--update"},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			args := strings.Join(buildArgs(ports.SyncRequest{Server: testServer(), Policy: tt.policy}), " ")
			if !strings.Contains(args, tt.want) {
				t.Errorf("policy %s: args missing %s", tt.policy, tt.want)
			}
			if strings.Contains(args, tt.forbids) {
				t.Errorf("policy %s: args contain %s", tt.policy, tt.forbids)
			}
		})
	}
}

func TestBuildArgsIgnoreExisting(t *testing.T) {
	args := strings.Join(buildArgs(ports.SyncRequest{
		Server:         testServer(),
		Pull:           true,
		Policy:         ports.PolicyUpdate,
		IgnoreExisting: true,
	}), " ")
	if !strings.Contains(args, "--ignore-existing") {
		t.Errorf("args missing --ignore-existing: %s", args)
	}
}

func TestBuildArgsDryRun(t *testing.T) {
	args := strings.Join(buildArgs(ports.SyncRequest{Server: testServer(), DryRun: true}), " ")
	if !strings.Contains(args, "--dry-run") {
		t.Errorf("dry run args missing --dry-run: %s", args)
	}
}

func TestSSHCommand(t *testing.T) {
	s := testServer()
	if got := sshCommand(s); got != "ssh -o BatchMode=yes" {
		t.Errorf("sshCommand(default port) = %q", got)
	}

	s.Port = 2222
	s.IdentityFile = "/keys/id_ed25519"
	got := sshCommand(s)
	if !strings.Contains(got, "-p 2222") || !strings.Contains(got, "-i /keys/id_ed25519") {
		t.Errorf("sshCommand(custom) = %q", got)
	}
}

const statsOutput = `
Number of files: 12 (reg: 10, dir: 2)
Number of created files: 3
Number of deleted files: 0
Number of regular files transferred: 3
Total file size: 9,876 bytes
Total transferred file size: 1,234 bytes
Literal data: 1,234 bytes
`

func TestParseOutcomeStats(t *testing.T) {
	outcome := parseOutcome(statsOutput, false)
	if outcome.Transferred != 3 {
		t.Errorf("Transferred = %d, want 3", outcome.Transferred)
	}
	if outcome.Bytes != 1234 {
		t.Errorf("Bytes = %d, want 1234", outcome.Bytes)
	}
	if outcome.Planned != nil {
		t.Errorf("Planned = %v on a real run, want nil", outcome.Planned)
	}
}

func TestParseOutcomeOldRsync(t *testing.T) {
	outcome := parseOutcome("Number of files transferred: 7\nTotal transferred file size: 42 bytes\n", false)
	if outcome.Transferred != 7 || outcome.Bytes != 42 {
		t.Errorf("outcome = %+v, want 7 files / 42 bytes", outcome)
	}
}

func TestParseOutcomeDryRun(t *testing.T) {
	stdout := `>f+++++++++ a.txt
cd+++++++++ docs/
>f..t...... docs/b.txt
*deleting   old.txt
Number of regular files transferred: 2
Total transferred file size: 99 bytes
`
	outcome := parseOutcome(stdout, true)
	if len(outcome.Planned) != 4 {
		t.Fatalf("Planned = %v, want 4 actions", outcome.Planned)
	}
	if outcome.Planned[0] != "a.txt" {
		t.Errorf("Planned[0] = %q, want a.txt", outcome.Planned[0])
	}
	// rsync pads "*deleting" with spaces; the path must come out clean.
	if outcome.Planned[3] != "old.txt" {
		t.Errorf("Planned[3] = %q, want old.txt", outcome.Planned[3])
	}
}

func TestParseOutcomeNothingMatched(t *testing.T) {
	// Dry run against an empty source: no itemized lines, zero stats.
	outcome := parseOutcome("Number of regular files transferred: 0\nTotal transferred file size: 0 bytes\n", true)
	if len(outcome.Planned) != 0 || outcome.Transferred != 0 {
		t.Errorf("outcome = %+v, want empty", outcome)
	}
}
