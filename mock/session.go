package mock

import (
	"context"

	"github.com/procdoc/procdoc"
)

var _ procdoc.SessionExporter = (*SessionExporter)(nil)

// SessionExporter is a mock implementation of procdoc.SessionExporter.
type SessionExporter struct {
	ExportSessionFn func(ctx context.Context, page *procdoc.CasePage) (procdoc.FetchSession, error)
}

func (s *SessionExporter) ExportSession(ctx context.Context, page *procdoc.CasePage) (procdoc.FetchSession, error) {
	return s.ExportSessionFn(ctx, page)
}
