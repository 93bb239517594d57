package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.CaseLocator = (*CaseLocator)(nil)

// CaseLocator is a mock implementation of procdoc.CaseLocator.
type CaseLocator struct {
	LocateCaseFn func(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error)
}

func (l *CaseLocator) LocateCase(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
	return l.LocateCaseFn(ctx, protocolNumber, progress)
}
