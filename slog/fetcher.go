package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/procdoc/procdoc"
)

// Ensure LoggingFetcher implements procdoc.DocumentFetcher.
var _ procdoc.DocumentFetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a DocumentFetcher with operational logging.
type LoggingFetcher struct {
	next   procdoc.DocumentFetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next procdoc.DocumentFetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// FetchDocument delegates to the wrapped fetcher and logs the transfer.
func (f *LoggingFetcher) FetchDocument(ctx context.Context, url string, session procdoc.FetchSession) (data []byte, err error) {
	defer func(begin time.Time) {
		f.logger.Info("document fetch",
			"url", url,
			"bytes", len(data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.FetchDocument(ctx, url, session)
}
