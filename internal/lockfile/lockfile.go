// Package lockfile provides single-writer mutual exclusion between
// separate shuttle invocations, backed by PID-stamped marker files.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"shuttle/internal/application"
)

// Manager creates and removes lock markers under Dir. One live marker
// may exist per lock name system-wide; a marker whose recorded process
// no longer exists is stale and is removed on the next acquire.
type Manager struct {
	Dir string

	mu   sync.Mutex
	held map[string]bool
}

// New returns a Manager storing markers under dir. An empty dir falls
// back to a shuttle-locks directory under the system temp root.
func New(dir string) *Manager {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "shuttle-locks")
	}
	return &Manager{Dir: dir, held: make(map[string]bool)}
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.Dir, name+".lock")
}

// Acquire takes the named lock for this process. If the marker exists
// and its holder is alive it fails with a LockBusyError; a dead holder's
// marker is removed and acquisition retried.
func (m *Manager) Acquire(name string) error {
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(m.path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(m.path(name))
				return fmt.Errorf("failed to write lock %q: %w", name, errors.Join(werr, cerr))
			}
			m.mu.Lock()
			m.held[name] = true
			m.mu.Unlock()
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create lock %q: %w", name, err)
		}

		pid, perr := m.holderPID(name)
		if perr == nil && processAlive(pid) {
			return &application.LockBusyError{Name: name, PID: pid}
		}
		// Stale or unreadable marker: remove and retry once.
		if rerr := os.Remove(m.path(name)); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale lock %q: %w", name, rerr)
		}
	}
	return &application.LockBusyError{Name: name}
}

// Release drops the named lock. Releasing an unheld or already-removed
// lock is a no-op.
func (m *Manager) Release(name string) error {
	m.mu.Lock()
	delete(m.held, name)
	m.mu.Unlock()

	if err := os.Remove(m.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to release lock %q: %w", name, err)
	}
	return nil
}

// ReleaseAll drops every lock acquired through this manager. Wired to
// process-exit cleanup so an aborted run never deadlocks the next one.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	names := make([]string, 0, len(m.held))
	for name := range m.held {
		names = append(names, name)
	}
	m.mu.Unlock()

	for _, name := range names {
		m.Release(name)
	}
}

// HolderPID reports the recorded holder of a lock, for diagnostics.
func (m *Manager) HolderPID(name string) (int, error) {
	return m.holderPID(name)
}

func (m *Manager) holderPID(name string) (int, error) {
	data, err := os.ReadFile(m.path(name))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed lock marker %q: %w", name, err)
	}
	return pid, nil
}

// processAlive reports whether pid refers to a running process. Signal 0
// performs the existence check without delivering anything.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process exists but belongs to someone else.
	return errors.Is(err, syscall.EPERM)
}
