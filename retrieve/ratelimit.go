package retrieve

import (
	"context"

	"github.com/procdoc/procdoc"
	"golang.org/x/time/rate"
)

var _ procdoc.PortalLimiter = (*Limiter)(nil)

// Limiter enforces a polite request rate against the portal using a token
// bucket. Burst is 1, so visits space out evenly instead of clustering.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a Limiter allowing rps portal visits per second.
func NewLimiter(rps float64) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Wait blocks until the rate limit allows the next portal visit.
// Returns an error if the context is canceled before the wait completes.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
