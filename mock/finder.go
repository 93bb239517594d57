package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.CandidateFinder = (*CandidateFinder)(nil)

// CandidateFinder is a mock implementation of procdoc.CandidateFinder.
type CandidateFinder struct {
	FindCandidatesFn func(ctx context.Context, page *procdoc.CasePage, documentType string) ([]procdoc.DocumentCandidate, error)
}

func (f *CandidateFinder) FindCandidates(ctx context.Context, page *procdoc.CasePage, documentType string) ([]procdoc.DocumentCandidate, error) {
	return f.FindCandidatesFn(ctx, page, documentType)
}
