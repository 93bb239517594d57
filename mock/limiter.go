package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.PortalLimiter = (*PortalLimiter)(nil)

// PortalLimiter is a mock implementation of procdoc.PortalLimiter.
type PortalLimiter struct {
	WaitFn func(ctx context.Context) error
}

func (l *PortalLimiter) Wait(ctx context.Context) error {
	return l.WaitFn(ctx)
}
