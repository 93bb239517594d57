package procdoc

import "context"

// PortalLimiter paces requests against the portal. The portal is a shared
// public system; batch operations must not hammer it.
type PortalLimiter interface {
	// Wait blocks until the rate limit allows the next portal interaction.
	// Returns an error if the context is canceled while waiting.
	Wait(ctx context.Context) error
}
