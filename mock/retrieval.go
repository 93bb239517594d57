package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.RetrievalService = (*RetrievalService)(nil)

// RetrievalService is a mock implementation of procdoc.RetrievalService.
type RetrievalService struct {
	CreateRetrievalFn func(ctx context.Context, r *procdoc.Retrieval) error
	FindRetrievalsFn  func(ctx context.Context, filter procdoc.RetrievalFilter) ([]*procdoc.Retrieval, error)
}

func (s *RetrievalService) CreateRetrieval(ctx context.Context, r *procdoc.Retrieval) error {
	return s.CreateRetrievalFn(ctx, r)
}

func (s *RetrievalService) FindRetrievals(ctx context.Context, filter procdoc.RetrievalFilter) ([]*procdoc.Retrieval, error) {
	return s.FindRetrievalsFn(ctx, filter)
}
