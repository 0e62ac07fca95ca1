// Package s3cli implements the optional archival backend by shelling
// out to the aws CLI.
package s3cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"shuttle/internal/ports"
)

// Archiver implements ports.Archiver with `aws s3 sync`.
type Archiver struct {
	Binary string
}

var _ ports.Archiver = (*Archiver)(nil)

// New returns an Archiver invoking the system aws CLI.
func New() *Archiver {
	return &Archiver{Binary: "aws"}
}

// Archive copies localDir to s3://bucket/prefix. Callers treat failure
// as a warning; the transfer that produced localDir already completed.
func (a *Archiver) Archive(ctx context.Context, localDir, bucket, prefix string) error {
	dest := "s3://" + bucket
	if prefix != "" {
		dest += "/" + strings.Trim(prefix, "/")
	}

	cmd := exec.CommandContext(ctx, a.Binary, "s3", "sync", localDir, dest, "--only-show-errors")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("archive to %s failed: %s: %w", dest, strings.TrimSpace(stderr.String()), err)
	}
	return nil
}
