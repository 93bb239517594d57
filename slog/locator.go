// Package slog provides logging decorators for the domain interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/procdoc/procdoc"
)

// Ensure LoggingLocator implements procdoc.CaseLocator.
var _ procdoc.CaseLocator = (*LoggingLocator)(nil)

// LoggingLocator wraps a CaseLocator with operational logging.
type LoggingLocator struct {
	next   procdoc.CaseLocator
	logger *slog.Logger
}

// NewLoggingLocator creates a new LoggingLocator.
func NewLoggingLocator(next procdoc.CaseLocator, logger *slog.Logger) *LoggingLocator {
	return &LoggingLocator{next: next, logger: logger}
}

// LocateCase delegates to the wrapped locator and logs the outcome.
func (l *LoggingLocator) LocateCase(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (result *procdoc.CaseSearchResult, err error) {
	defer func(begin time.Time) {
		found := false
		if result != nil {
			found = result.Found
		}
		l.logger.Info("case search",
			"protocol", protocolNumber,
			"found", found,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.LocateCase(ctx, protocolNumber, progress)
}
