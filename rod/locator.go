package rod

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/goquery"
)

// Ensure Locator implements procdoc.CaseLocator.
var _ procdoc.CaseLocator = (*Locator)(nil)

// Selectors for the portal's search form. If the portal redesigns the
// form these are the first thing to revisit.
const (
	searchTypeSelect = "#cbPesquisa"
	searchTypeValue  = "NUMPROC"
	numberField      = "#numeroDigitoAnoUnificado"
	forumField       = "#foroNumeroUnificado"
	submitButton     = "#botaoConsultarProcessos"
)

// Locator searches the portal for cases by protocol number.
type Locator struct {
	session *Session
	logger  *slog.Logger
}

// NewLocator creates a Locator on top of a browser session.
func NewLocator(session *Session) *Locator {
	return &Locator{session: session, logger: session.logger}
}

// LocateCase drives the search form and classifies the page the portal
// answers with. Not-found is a normal outcome. On found, ownership of the
// returned page transfers to the caller.
func (l *Locator) LocateCase(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
	if err := procdoc.ValidateProtocol(protocolNumber); err != nil {
		return nil, err
	}
	digits := procdoc.NormalizeProtocol(protocolNumber)

	progress.Emit(procdoc.StageConnecting, "starting browser session")
	page, err := l.session.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	// The page is closed here on every path except a found case, where
	// ownership moves to the result.
	owned := true
	defer func() {
		if owned {
			_ = page.Close()
		}
	}()

	progress.Emit(procdoc.StageNavigating, "opening portal search page")
	if err := l.openSearchForm(page); err != nil {
		return nil, err
	}

	if err := l.fillSearchForm(page, digits); err != nil {
		return nil, err
	}

	progress.Emit(procdoc.StageSearching, "submitting protocol number")
	html, err := l.submitSearch(page)
	if err != nil {
		return nil, err
	}

	class, err := goquery.ClassifyResultPage(html)
	if err != nil {
		return nil, err
	}
	l.logger.Info("case search classified", "protocol", protocolNumber, "class", class.String())

	switch class {
	case procdoc.ResultNotFound:
		return &procdoc.CaseSearchResult{Found: false, ProtocolNumber: protocolNumber}, nil
	case procdoc.ResultFound:
		owned = false
		return &procdoc.CaseSearchResult{
			Found:          true,
			ProtocolNumber: protocolNumber,
			CasePageURL:    pageURL(page),
			Page:           procdoc.NewCasePage(page, pageURL(page)),
		}, nil
	default:
		return nil, procdoc.Errorf(procdoc.EAMBIGUOUS,
			"portal response for %q matched neither a case record nor a no-results message; verify manually", protocolNumber)
	}
}

// openSearchForm navigates to the search page and waits for it to load.
func (l *Locator) openSearchForm(page *rod.Page) error {
	cfg := l.session.cfg
	nav := page.Timeout(cfg.NavigationTimeout)
	if err := nav.Navigate(cfg.PortalURL); err != nil {
		return procdoc.Errorf(procdoc.ENETWORK, "navigating to portal: %v", err)
	}
	if err := nav.WaitLoad(); err != nil {
		return procdoc.Errorf(procdoc.ENETWORK, "loading portal search page: %v", err)
	}
	return nil
}

// fillSearchForm selects the protocol-number query type and types the
// number into the form. The portal splits the number across two fields;
// the forum part is filled only when its field exists.
func (l *Locator) fillSearchForm(page *rod.Page, digits string) error {
	cfg := l.session.cfg

	sel, err := page.Timeout(cfg.ElementTimeout).Element(searchTypeSelect)
	if err != nil {
		return procdoc.Errorf(procdoc.EPORTAL, "search type select %q not found", searchTypeSelect)
	}
	if err := sel.Select([]string{`[value="` + searchTypeValue + `"]`}, true, rod.SelectorTypeCSSSector); err != nil {
		return procdoc.Errorf(procdoc.EPORTAL, "selecting protocol search type: %v", err)
	}

	// Unified number layout: 7 sequence + 2 check + 4 year digits in the
	// main field, the 4 origin digits in the forum field.
	if err := l.fillField(page, numberField, digits[:13]); err != nil {
		return err
	}
	if has, _, _ := page.Has(forumField); has {
		if err := l.fillField(page, forumField, digits[16:]); err != nil {
			return err
		}
	}
	return nil
}

func (l *Locator) fillField(page *rod.Page, selector, value string) error {
	el, err := page.Timeout(l.session.cfg.ElementTimeout).Element(selector)
	if err != nil {
		return procdoc.Errorf(procdoc.EPORTAL, "search field %q not found", selector)
	}
	if err := el.SelectAllText(); err != nil {
		return procdoc.Errorf(procdoc.EPORTAL, "clearing search field %q: %v", selector, err)
	}
	if err := el.Input(value); err != nil {
		return procdoc.Errorf(procdoc.EPORTAL, "typing into search field %q: %v", selector, err)
	}
	return nil
}

// submitSearch clicks the submit button, waits out the navigation with
// the generous submit timeout, and returns the landed page's HTML.
func (l *Locator) submitSearch(page *rod.Page) (string, error) {
	cfg := l.session.cfg

	btn, err := page.Timeout(cfg.ElementTimeout).Element(submitButton)
	if err != nil {
		return "", procdoc.Errorf(procdoc.EPORTAL, "search submit button %q not found", submitButton)
	}

	wait := page.Timeout(cfg.SubmitTimeout).WaitNavigation(proto.PageLifecycleEventNameLoad)
	if err := btn.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", procdoc.Errorf(procdoc.EPORTAL, "clicking search submit: %v", err)
	}
	wait()

	html, err := page.HTML()
	if err != nil {
		return "", procdoc.Errorf(procdoc.EBROWSER, "reading result page: %v", err)
	}
	return html, nil
}

// pageURL reads the page's current address, falling back to empty on
// browser errors.
func pageURL(page *rod.Page) string {
	info, err := page.Info()
	if err != nil || info == nil {
		return ""
	}
	return info.URL
}
