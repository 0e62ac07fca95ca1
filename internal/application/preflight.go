package application

import (
	"context"
	"time"

	"shuttle/internal/domain"
	"shuttle/internal/ports"
)

// DefaultProbeTimeout bounds the reachability probe. Transfers
// themselves are not subject to it.
const DefaultProbeTimeout = 5 * time.Second

// Preflight validates identifiers, registry membership and optionally
// live reachability before any filesystem mutation happens.
type Preflight struct {
	Registry     ports.ServerRegistry
	Prober       ports.ReachabilityProber
	ProbeTimeout time.Duration

	// SkipProbe disables the connectivity check (--no-probe).
	SkipProbe bool
}

// CheckServer validates a single-server action and returns the resolved
// record. Identifier format is checked before the registry is consulted
// so malformed input never reaches a lookup or a shell.
func (p *Preflight) CheckServer(ctx context.Context, id string) (*domain.Server, error) {
	if err := domain.ValidateServerID(id); err != nil {
		return nil, err
	}

	server, err := p.Registry.Resolve(id)
	if err != nil {
		return nil, err
	}

	if err := p.probe(ctx, server); err != nil {
		return nil, err
	}

	return server, nil
}

// CheckRelay validates both sides of a relay. Self-relay is rejected
// outright rather than left undefined.
func (p *Preflight) CheckRelay(ctx context.Context, fromID, toID string) (from, to *domain.Server, err error) {
	if err := domain.ValidateServerID(fromID); err != nil {
		return nil, nil, err
	}
	if err := domain.ValidateServerID(toID); err != nil {
		return nil, nil, err
	}
	if fromID == toID {
		return nil, nil, ErrSelfRelay
	}

	if from, err = p.Registry.Resolve(fromID); err != nil {
		return nil, nil, err
	}
	if to, err = p.Registry.Resolve(toID); err != nil {
		return nil, nil, err
	}

	if err = p.probe(ctx, from); err != nil {
		return nil, nil, err
	}
	if err = p.probe(ctx, to); err != nil {
		return nil, nil, err
	}

	return from, to, nil
}

func (p *Preflight) probe(ctx context.Context, server *domain.Server) error {
	if p.SkipProbe || p.Prober == nil {
		return nil
	}
	timeout := p.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if err := p.Prober.Probe(ctx, *server, timeout); err != nil {
		return &ReachabilityError{ServerID: server.ID, Err: err}
	}
	return nil
}
