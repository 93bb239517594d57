package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.CaseService = (*CaseService)(nil)

// CaseService is a mock implementation of procdoc.CaseService.
type CaseService struct {
	UpsertCaseFn         func(ctx context.Context, rec *procdoc.CaseRecord) error
	FindCaseByProtocolFn func(ctx context.Context, protocolNumber string) (*procdoc.CaseRecord, error)
	FindCasesFn          func(ctx context.Context, filter procdoc.CaseFilter) ([]*procdoc.CaseRecord, error)
	DeleteCaseFn         func(ctx context.Context, id string) error
}

func (s *CaseService) UpsertCase(ctx context.Context, rec *procdoc.CaseRecord) error {
	return s.UpsertCaseFn(ctx, rec)
}

func (s *CaseService) FindCaseByProtocol(ctx context.Context, protocolNumber string) (*procdoc.CaseRecord, error) {
	return s.FindCaseByProtocolFn(ctx, protocolNumber)
}

func (s *CaseService) FindCases(ctx context.Context, filter procdoc.CaseFilter) ([]*procdoc.CaseRecord, error) {
	return s.FindCasesFn(ctx, filter)
}

func (s *CaseService) DeleteCase(ctx context.Context, id string) error {
	return s.DeleteCaseFn(ctx, id)
}
