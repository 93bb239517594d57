package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/goquery"
)

// Ensure Finder implements procdoc.CandidateFinder.
var _ procdoc.CandidateFinder = (*Finder)(nil)

// Selectors for the movement history controls on a live case page.
const (
	expandMovementsLink = "#linkmovimentacoes"
	allMovementsTable   = "tbody#tabelaTodasMovimentacoes"
)

// Finder scans live case pages for document candidates.
type Finder struct {
	session *Session
	logger  *slog.Logger
}

// NewFinder creates a Finder on top of a browser session.
func NewFinder(session *Session) *Finder {
	return &Finder{session: session, logger: session.logger}
}

// FindCandidates expands the movement history and scans it for rows
// matching the document type. The page stays owned by the caller.
func (f *Finder) FindCandidates(ctx context.Context, page *procdoc.CasePage, documentType string) ([]procdoc.DocumentCandidate, error) {
	p, err := livePage(page)
	if err != nil {
		return nil, err
	}
	p = p.Context(ctx)

	expandMovements(p, f.session.cfg.ElementTimeout)

	html, err := p.HTML()
	if err != nil {
		return nil, procdoc.Errorf(procdoc.EBROWSER, "reading case page: %v", err)
	}

	candidates, err := goquery.FindCandidates(html, documentType)
	if err != nil {
		return nil, err
	}
	f.logger.Info("document candidates scanned", "type", documentType, "count", len(candidates))
	return candidates, nil
}

// expandMovements clicks the show-all link when the abbreviated history is
// displayed. Calling it on an already expanded page is a no-op, so every
// operation can run it unconditionally.
func expandMovements(page *rod.Page, timeout time.Duration) {
	has, link, err := page.Has(expandMovementsLink)
	if err != nil || !has {
		return
	}
	visible, err := link.Visible()
	if err != nil || !visible {
		// The portal hides the link once the history is expanded.
		return
	}
	if err := link.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return
	}
	// Give the full table a moment to render; rows arrive asynchronously.
	_, _ = page.Timeout(timeout).Element(allMovementsTable + " tr")
}
