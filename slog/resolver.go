package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/procdoc/procdoc"
)

// Ensure LoggingResolver implements procdoc.DocumentResolver.
var _ procdoc.DocumentResolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a DocumentResolver with operational logging.
type LoggingResolver struct {
	next   procdoc.DocumentResolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next procdoc.DocumentResolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// ResolveURL delegates to the wrapped resolver and logs the strategy that won.
func (r *LoggingResolver) ResolveURL(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (result *procdoc.DocumentDownloadResult, err error) {
	defer func(begin time.Time) {
		strategy := ""
		if result != nil {
			strategy = result.Strategy
		}
		r.logger.Info("document resolution",
			"description", candidate.Description,
			"strategy", strategy,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.ResolveURL(ctx, page, candidate, progress)
}

// DownloadFile delegates to the wrapped resolver and logs the landed file.
func (r *LoggingResolver) DownloadFile(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (result *procdoc.DocumentDownloadResult, err error) {
	defer func(begin time.Time) {
		path := ""
		if result != nil {
			path = result.FilePath
		}
		r.logger.Info("document download",
			"description", candidate.Description,
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.DownloadFile(ctx, page, candidate, progress)
}
