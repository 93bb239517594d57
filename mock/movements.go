package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.MovementsExtractor = (*MovementsExtractor)(nil)

// MovementsExtractor is a mock implementation of procdoc.MovementsExtractor.
type MovementsExtractor struct {
	ExtractMovementsFn func(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (*procdoc.MovementsResult, error)
}

func (e *MovementsExtractor) ExtractMovements(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (*procdoc.MovementsResult, error) {
	return e.ExtractMovementsFn(ctx, protocolNumber, progress)
}
