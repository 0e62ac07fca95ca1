package domain

import "path/filepath"

// Layout maps the directory-namespace contract onto a local base
// directory. The inbox/outbox shape is the wire format shared with
// remote peers and must not change:
//
//	local/inbox/<server_id>/   files received from pulls
//	local/outbox/global/       files offered to every server
//	local/outbox/<server_id>/  files offered to one server
//	staging/<server_id>/<op>/  ephemeral per-operation staging
//	logs/sync.jsonl            operation ledger
type Layout struct {
	Base string
}

// InboxDir returns the local inbox for files received from serverID.
func (l Layout) InboxDir(serverID string) string {
	return filepath.Join(l.Base, "local", "inbox", serverID)
}

// OutboxGlobalDir returns the outbox scope pullable by every server.
func (l Layout) OutboxGlobalDir() string {
	return filepath.Join(l.Base, "local", "outbox", ReservedScope)
}

// OutboxServerDir returns the outbox scope pullable only by serverID.
func (l Layout) OutboxServerDir(serverID string) string {
	return filepath.Join(l.Base, "local", "outbox", serverID)
}

// StagingDir returns the staging directory for one operation against
// one server. The operation id keeps concurrent and repeated runs from
// ever sharing a directory.
func (l Layout) StagingDir(serverID, operationID string) string {
	return filepath.Join(l.Base, "staging", serverID, operationID)
}

// LogsDir returns the directory holding the operation ledger.
func (l Layout) LogsDir() string {
	return filepath.Join(l.Base, "logs")
}

// LedgerPath returns the append-only operation ledger file.
func (l Layout) LedgerPath() string {
	return filepath.Join(l.LogsDir(), "sync.jsonl")
}

// IndexPath returns the sqlite history index derived from the ledger.
func (l Layout) IndexPath() string {
	return filepath.Join(l.LogsDir(), "history.db")
}

// RemoteOutboxGlobal returns the path of a server's global outbox under
// its remote base.
func RemoteOutboxGlobal(s Server) string {
	return s.RemoteBase + "/outbox/" + ReservedScope
}

// RemoteOutboxFor returns the path of a server's outbox scoped to name.
// Pull logic enumerates exactly this and the global scope: a server only
// learns what was shared with it or with everyone.
func RemoteOutboxFor(s Server, name string) string {
	return s.RemoteBase + "/outbox/" + name
}

// RemoteInboxFor returns the path of a server's inbox attributed to name.
func RemoteInboxFor(s Server, name string) string {
	return s.RemoteBase + "/inbox/" + name
}
