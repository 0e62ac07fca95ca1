package domain

import (
	"fmt"
	"regexp"
)

// ReservedScope is the outbox scope visible to every server. No server
// may claim it as an identifier.
const ReservedScope = "global"

// MaxServerIDLength bounds identifiers used in filesystem and remote
// shell paths.
const MaxServerIDLength = 64

// serverIDPattern is deliberately conservative: identifiers end up in
// rsync arguments and remote paths, so anything outside alphanumerics,
// hyphen and underscore is rejected.
var serverIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// Server is one configured remote host. Records are immutable for the
// duration of a process run; only the registry creates them.
type Server struct {
	ID           string
	Name         string
	Host         string
	Port         int
	User         string
	IdentityFile string
	RemoteBase   string
	Enabled      bool
	S3Backup     bool
	S3Bucket     string
}

// Addr returns the user@host form used by ssh and rsync.
func (s Server) Addr() string {
	if s.User == "" {
		return s.Host
	}
	return s.User + "@" + s.Host
}

// DefaultRemoteBase returns the remote base path used when a server
// record does not set one explicitly.
func DefaultRemoteBase(user string) string {
	if user == "" {
		return ""
	}
	return fmt.Sprintf("/home/%s/.sync-shuttle", user)
}

// ValidateServerID checks that an identifier is safe to embed in local
// and remote paths. The reserved scope name is never a valid server ID.
func ValidateServerID(id string) error {
	if id == "" {
		return &IdentifierError{ID: id, Reason: "identifier is empty"}
	}
	if id == ReservedScope {
		return &IdentifierError{ID: id, Reason: "identifier is reserved", Reserved: true}
	}
	if len(id) > MaxServerIDLength {
		return &IdentifierError{ID: id, Reason: fmt.Sprintf("identifier exceeds %d characters", MaxServerIDLength)}
	}
	if !serverIDPattern.MatchString(id) {
		return &IdentifierError{ID: id, Reason: "identifier must be alphanumeric with hyphens or underscores"}
	}
	return nil
}

// IdentifierError reports a malformed or reserved server identifier.
type IdentifierError struct {
	ID       string
	Reason   string
	Reserved bool
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("invalid server id %q: %s", e.ID, e.Reason)
}
