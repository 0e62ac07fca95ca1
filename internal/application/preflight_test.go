package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"shuttle/internal/domain"
)

type stubRegistry struct {
	servers map[string]domain.Server
}

func (r *stubRegistry) Resolve(id string) (*domain.Server, error) {
	s, ok := r.servers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, id)
	}
	if !s.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrServerDisabled, id)
	}
	return &s, nil
}

func (r *stubRegistry) List() ([]domain.Server, error) { return nil, nil }

type stubProber struct {
	down map[string]error
}

func (p *stubProber) Probe(_ context.Context, server domain.Server, _ time.Duration) error {
	return p.down[server.ID]
}

func newPreflight() (*Preflight, *stubProber) {
	prober := &stubProber{down: map[string]error{}}
	return &Preflight{
		Registry: &stubRegistry{servers: map[string]domain.Server{
			"alpha": {ID: "alpha", Enabled: true},
			"beta":  {ID: "beta", Enabled: true},
			"off":   {ID: "off", Enabled: false},
		}},
		Prober: prober,
	}, prober
}

func TestCheckServer(t *testing.T) {
	p, _ := newPreflight()
	ctx := context.Background()

	s, err := p.CheckServer(ctx, "alpha")
	if err != nil || s.ID != "alpha" {
		t.Fatalf("CheckServer(alpha) = %v, %v", s, err)
	}

	if _, err := p.CheckServer(ctx, "missing"); !errors.Is(err, ErrServerNotFound) {
		t.Errorf("CheckServer(missing) error = %v", err)
	}
	if _, err := p.CheckServer(ctx, "off"); !errors.Is(err, ErrServerDisabled) {
		t.Errorf("CheckServer(off) error = %v", err)
	}
	if _, err := p.CheckServer(ctx, "global"); err == nil {
		t.Error("CheckServer(global) succeeded for reserved id")
	}
}

func TestCheckServerUnreachable(t *testing.T) {
	p, prober := newPreflight()
	prober.down["alpha"] = errors.New("no route to host")

	_, err := p.CheckServer(context.Background(), "alpha")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("error = %v, want ErrUnreachable", err)
	}

	p.SkipProbe = true
	if _, err := p.CheckServer(context.Background(), "alpha"); err != nil {
		t.Errorf("SkipProbe CheckServer error = %v", err)
	}
}

func TestCheckRelay(t *testing.T) {
	p, prober := newPreflight()
	ctx := context.Background()

	from, to, err := p.CheckRelay(ctx, "alpha", "beta")
	if err != nil || from.ID != "alpha" || to.ID != "beta" {
		t.Fatalf("CheckRelay = %v, %v, %v", from, to, err)
	}

	if _, _, err := p.CheckRelay(ctx, "alpha", "alpha"); !errors.Is(err, ErrSelfRelay) {
		t.Errorf("self relay error = %v, want ErrSelfRelay", err)
	}
	if _, _, err := p.CheckRelay(ctx, "alpha", "missing"); !errors.Is(err, ErrServerNotFound) {
		t.Errorf("relay to unknown error = %v", err)
	}

	// Each side's reachability is reported by name.
	prober.down["beta"] = errors.New("timeout")
	_, _, err = p.CheckRelay(ctx, "alpha", "beta")
	var re *ReachabilityError
	if !errors.As(err, &re) || re.ServerID != "beta" {
		t.Errorf("relay unreachable error = %v, want failure naming beta", err)
	}
}
