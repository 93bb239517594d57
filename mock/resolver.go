package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.DocumentResolver = (*DocumentResolver)(nil)

// DocumentResolver is a mock implementation of procdoc.DocumentResolver.
type DocumentResolver struct {
	ResolveURLFn   func(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error)
	DownloadFileFn func(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error)
}

func (r *DocumentResolver) ResolveURL(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
	return r.ResolveURLFn(ctx, page, candidate, progress)
}

func (r *DocumentResolver) DownloadFile(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
	return r.DownloadFileFn(ctx, page, candidate, progress)
}
