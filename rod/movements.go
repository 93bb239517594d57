package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/goquery"
)

// Ensure MovementsExtractor implements procdoc.MovementsExtractor.
var _ procdoc.MovementsExtractor = (*MovementsExtractor)(nil)

// MovementsExtractor scrapes a case's header and movement history through
// a live browser session.
type MovementsExtractor struct {
	session *Session
	locator *Locator
	logger  *slog.Logger
}

// NewMovementsExtractor creates a MovementsExtractor that locates cases
// with locator and scrapes them through session.
func NewMovementsExtractor(session *Session, locator *Locator) *MovementsExtractor {
	return &MovementsExtractor{
		session: session,
		locator: locator,
		logger:  session.logger,
	}
}

// ExtractMovements locates the case, expands the full movement table and
// parses the page into details, movements and the cleaned composite text.
func (e *MovementsExtractor) ExtractMovements(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (*procdoc.MovementsResult, error) {
	result, err := e.locator.LocateCase(ctx, protocolNumber, progress)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return nil, procdoc.Errorf(procdoc.ENOTFOUND, "case %s not found on the portal", result.ProtocolNumber)
	}
	defer result.Page.Close()

	p, err := livePage(result.Page)
	if err != nil {
		return nil, err
	}
	p = p.Context(ctx)

	progress.Emit(procdoc.StageExtracting, "expanding the movement history")
	expandMovements(p, e.session.cfg.ElementTimeout)

	html, err := p.HTML()
	if err != nil {
		return nil, procdoc.Errorf(procdoc.EPORTAL, "reading case page: %v", err)
	}

	details, err := goquery.ParseCaseDetails(html)
	if err != nil {
		return nil, err
	}
	movements, err := goquery.ParseMovements(html)
	if err != nil {
		return nil, err
	}
	if details.CaseNumber == "" && len(movements) == 0 {
		return nil, procdoc.Errorf(procdoc.EPORTAL,
			"case page for %s carries no recognizable movement data", result.ProtocolNumber)
	}

	progress.Emit(procdoc.StageProcessing, "formatting the movement history")
	text := procdoc.CleanMovementsText(procdoc.FormatMovements(details, movements))

	e.logger.Info("movements extracted",
		"protocol", result.ProtocolNumber,
		"movements", len(movements),
		"parties", len(details.Parties))

	return &procdoc.MovementsResult{
		ProtocolNumber: result.ProtocolNumber,
		Details:        details,
		Movements:      movements,
		Text:           text,
		HTML:           html,
		SourceURL:      result.CasePageURL,
		RetrievedAt:    time.Now().UTC(),
	}, nil
}
