// Package sshprobe tests remote reachability with a no-op command over
// the same authenticated channel the transfer engine uses.
package sshprobe

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"shuttle/internal/config"
	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// Prober implements ports.ReachabilityProber by running `ssh ... true`.
type Prober struct {
	Binary string
}

var _ ports.ReachabilityProber = (*Prober)(nil)

// New returns a Prober invoking the system ssh.
func New() *Prober {
	return &Prober{Binary: "ssh"}
}

// Probe runs a no-op remote command with a bounded connect timeout.
// Only success or failure matters; output is discarded.
func (p *Prober) Probe(ctx context.Context, server domain.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", int(timeout.Seconds())),
	}
	if server.Port != 0 && server.Port != 22 {
		args = append(args, "-p", fmt.Sprint(server.Port))
	}
	if server.IdentityFile != "" {
		args = append(args, "-i", config.ExpandHome(server.IdentityFile))
	}
	args = append(args, server.Addr(), "true")

	if err := exec.CommandContext(ctx, p.Binary, args...).Run(); err != nil {
		return fmt.Errorf("probe of %s failed: %w", server.Addr(), err)
	}
	return nil
}
