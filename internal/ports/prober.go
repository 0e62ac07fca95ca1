package ports

import (
	"context"
	"time"

	"shuttle/internal/domain"
)

// ReachabilityProber tests whether a server answers on its authenticated
// channel within a bounded timeout. Only success or failure is reported;
// the probe never transfers data.
type ReachabilityProber interface {
	Probe(ctx context.Context, server domain.Server, timeout time.Duration) error
}
