package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.DocumentFetcher = (*DocumentFetcher)(nil)

// DocumentFetcher is a mock implementation of procdoc.DocumentFetcher.
type DocumentFetcher struct {
	FetchDocumentFn func(ctx context.Context, url string, session procdoc.FetchSession) ([]byte, error)
}

func (f *DocumentFetcher) FetchDocument(ctx context.Context, url string, session procdoc.FetchSession) ([]byte, error) {
	return f.FetchDocumentFn(ctx, url, session)
}
