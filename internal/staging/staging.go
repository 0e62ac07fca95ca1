// Package staging manages the ephemeral per-operation directories that
// isolate one transfer's payload from concurrent and accumulated state.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shuttle/internal/domain"
)

// Manager creates staging directories under the layout's staging root.
// When Preserve is set, a handle discarded after a failure keeps its
// directory on disk for postmortem inspection; routine success always
// deletes it.
type Manager struct {
	Layout   domain.Layout
	Preserve bool
}

// Handle is one operation's staging directory. It is owned exclusively
// by the operation that created it: the directory path embeds a fresh
// operation id, so handles are never shared.
type Handle struct {
	Dir         string
	ServerID    string
	OperationID string

	preserve bool
	files    int
}

// Begin creates the staging directory for (serverID, operationID).
func (m *Manager) Begin(serverID, operationID string) (*Handle, error) {
	dir := m.Layout.StagingDir(serverID, operationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	return &Handle{
		Dir:         dir,
		ServerID:    serverID,
		OperationID: operationID,
		preserve:    m.Preserve,
	}, nil
}

// Add copies a file or directory into the staging root, preserving its
// base name and modification times. Sources are never moved or modified.
func (h *Handle) Add(sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", sourcePath, err)
	}

	dest := filepath.Join(h.Dir, filepath.Base(sourcePath))
	if err := copyPath(sourcePath, dest, info); err != nil {
		return fmt.Errorf("failed to stage %s: %w", sourcePath, err)
	}
	h.files++
	return nil
}

// CopyInto copies a file or directory into destDir under its base name,
// preserving modification times. The share operation uses it to place
// files into outbox scopes with the same copy semantics staging uses.
func CopyInto(destDir, sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", sourcePath, err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}
	dest := filepath.Join(destDir, filepath.Base(sourcePath))
	if err := copyPath(sourcePath, dest, info); err != nil {
		return fmt.Errorf("failed to copy %s: %w", sourcePath, err)
	}
	return nil
}

// Count returns how many entries were staged.
func (h *Handle) Count() int {
	return h.files
}

// Discard removes the staging directory. When the handle's manager was
// configured to preserve debris and failed is true, the directory is
// kept for inspection instead.
func (h *Handle) Discard(failed bool) error {
	if failed && h.preserve {
		return nil
	}
	if err := os.RemoveAll(h.Dir); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	return nil
}

func copyPath(src, dest string, info os.FileInfo) error {
	if info.IsDir() {
		if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
			return err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			entryInfo, err := entry.Info()
			if err != nil {
				return err
			}
			if err := copyPath(filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name()), entryInfo); err != nil {
				return err
			}
		}
		return os.Chtimes(dest, info.ModTime(), info.ModTime())
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	// Keep source mtimes so the update policy sees staged copies as
	// unchanged files, not fresh ones.
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
