package rod

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/fs"
)

// Ensure Resolver implements procdoc.DocumentResolver.
var _ procdoc.DocumentResolver = (*Resolver)(nil)

// viewerFrameSelectors are tried in order when hunting for the embedded
// document viewer after a navigation.
var viewerFrameSelectors = []string{
	`iframe[src*="getPDF"]`,
	`iframe[src*="pastadigital"]`,
	`iframe[src*="abrirDocumento"]`,
	`iframe#documento`,
	`embed[type="application/pdf"]`,
}

// downloadControlSelectors locate the save button inside a viewer frame.
var downloadControlSelectors = []string{
	"#download",
	"#downloadButton",
	"#btnDownloadDocumento",
	`button[title*="Download"]`,
	`a[title*="Download"]`,
}

// movementDescCellLive mirrors the parser's description-cell selector for
// re-locating candidates on the live page.
const movementDescCellLive = "td.descricaoMovimentacao"

// Resolver turns selected candidates into document URLs or downloaded
// files.
type Resolver struct {
	session *Session
	logger  *slog.Logger

	// DownloadDelays is the polling schedule for browser downloads.
	// Replaceable so tests can poll without real waiting.
	DownloadDelays []time.Duration
}

// NewResolver creates a Resolver on top of a browser session.
func NewResolver(session *Session) *Resolver {
	return &Resolver{
		session:        session,
		logger:         session.logger,
		DownloadDelays: fs.DefaultDownloadDelays(),
	}
}

// urlStrategy is one step of the resolution chain. resolve reports ok
// only when it produced a usable URL; failures fall through to the next
// strategy.
type urlStrategy struct {
	name    string
	resolve func(ctx context.Context, p *rod.Page, cand procdoc.DocumentCandidate) (string, bool)
}

func (r *Resolver) strategies() []urlStrategy {
	return []urlStrategy{
		{"direct", r.resolveDirect},
		{"reconstruct", r.resolveReconstruct},
		{"navigate", r.resolveNavigate},
		{"interact", r.resolveInteract},
	}
}

// ResolveURL runs the strategy chain in its fixed order and returns the
// first URL produced, recording which strategy won. The cheap inspections
// run first; strategies that navigate or click only run when those fail.
func (r *Resolver) ResolveURL(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
	p, err := livePage(page)
	if err != nil {
		return nil, err
	}
	p = p.Context(ctx)

	for _, st := range r.strategies() {
		progress.Emit(procdoc.StageProcessing, "resolving document URL via "+st.name)
		url, ok := st.resolve(ctx, p, candidate)
		if !ok {
			continue
		}
		r.logger.Info("document URL resolved", "strategy", st.name, "url", url)
		return &procdoc.DocumentDownloadResult{
			URL:         url,
			Description: candidate.Description,
			Strategy:    st.name,
		}, nil
	}

	return nil, procdoc.Errorf(procdoc.EUNRESOLVED,
		"could not resolve a URL for document %q with any strategy", candidate.Description)
}

// DownloadFile retrieves the document through the browser's own download
// machinery: open the viewer, click its save control, then poll the
// download directory until a finished file shows up.
func (r *Resolver) DownloadFile(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
	cfg := r.session.cfg
	if cfg.DownloadDir == "" {
		return nil, procdoc.Errorf(procdoc.EINVALID, "download directory not configured")
	}

	p, err := livePage(page)
	if err != nil {
		return nil, err
	}
	p = p.Context(ctx)

	r.session.ConfigureDownloads(p)
	before, err := fs.SnapshotDir(cfg.DownloadDir)
	if err != nil {
		return nil, err
	}

	progress.Emit(procdoc.StageDownloading, "opening document viewer")
	r.openDocument(ctx, p, candidate)
	if frame := r.findViewerFrame(p); frame != nil {
		r.clickDownloadControl(frame)
	}

	progress.Emit(procdoc.StageDownloading, "waiting for the download to finish")
	path, err := fs.WaitForNewFile(ctx, cfg.DownloadDir, before, r.DownloadDelays)
	if err != nil {
		return nil, err
	}

	r.logger.Info("document downloaded", "path", path)
	return &procdoc.DocumentDownloadResult{
		FilePath:    path,
		Description: candidate.Description,
		Strategy:    "download",
	}, nil
}

// resolveDirect accepts refs that already point at the document bytes.
func (r *Resolver) resolveDirect(_ context.Context, p *rod.Page, cand procdoc.DocumentCandidate) (string, bool) {
	ref := navigableRef(cand.LinkRef)
	if ref == "" || !procdoc.IsDirectPDFHref(ref) {
		return "", false
	}
	return procdoc.AbsoluteURL(r.baseFor(p), ref), true
}

// resolveReconstruct builds the direct URL from the document id carried
// by a viewer ref, skipping the viewer entirely.
func (r *Resolver) resolveReconstruct(_ context.Context, _ *rod.Page, cand procdoc.DocumentCandidate) (string, bool) {
	ref := navigableRef(cand.LinkRef)
	if ref == "" || !procdoc.IsDocumentOpenHref(ref) {
		return "", false
	}
	id := procdoc.DocumentIDFromRef(ref)
	if id == "" {
		return "", false
	}
	return procdoc.BuildPDFURL(r.session.cfg.PortalOrigin(), id), true
}

// resolveNavigate follows the ref in the owned page and inspects where it
// landed: a viewer frame's file, or the document itself.
func (r *Resolver) resolveNavigate(ctx context.Context, p *rod.Page, cand procdoc.DocumentCandidate) (string, bool) {
	ref := navigableRef(cand.LinkRef)
	if ref == "" {
		return "", false
	}

	navigateTolerant(p.Context(ctx), procdoc.AbsoluteURL(r.baseFor(p), ref), r.session.cfg.NavigationTimeout)

	if u := r.viewerURL(p); u != "" {
		return u, true
	}
	if u := pageURL(p); procdoc.IsDirectPDFHref(u) {
		return u, true
	}
	return "", false
}

// resolveInteract is the last resort: trigger the portal's own handler by
// clicking the re-located element, or by evaluating the onclick payload,
// then inspect the page again.
func (r *Resolver) resolveInteract(ctx context.Context, p *rod.Page, cand procdoc.DocumentCandidate) (string, bool) {
	p = p.Context(ctx)
	cfg := r.session.cfg

	if el, err := r.locateLink(p, cand); err == nil {
		wait := p.Timeout(cfg.NavigationTimeout).WaitNavigation(proto.PageLifecycleEventNameLoad)
		if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
			wait()
		}
	} else if js := handlerJS(cand.LinkRef); js != "" {
		if _, err := p.Eval("() => { " + js + " }"); err != nil {
			return "", false
		}
	} else {
		return "", false
	}

	// Give the viewer a chance to attach before inspecting.
	_, _ = p.Timeout(cfg.ElementTimeout).Element(strings.Join(viewerFrameSelectors, ", "))

	if u := r.viewerURL(p); u != "" {
		return u, true
	}
	if u := pageURL(p); procdoc.IsDirectPDFHref(u) {
		return u, true
	}
	return "", false
}

// openDocument brings the document's viewer up in the page, tolerating
// the load timeouts embedded viewers routinely hit.
func (r *Resolver) openDocument(ctx context.Context, p *rod.Page, cand procdoc.DocumentCandidate) {
	p = p.Context(ctx)

	if el, err := r.locateLink(p, cand); err == nil {
		wait := p.Timeout(r.session.cfg.NavigationTimeout).WaitNavigation(proto.PageLifecycleEventNameLoad)
		if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
			wait()
			return
		}
	}

	if ref := navigableRef(cand.LinkRef); ref != "" {
		navigateTolerant(p, procdoc.AbsoluteURL(r.baseFor(p), ref), r.session.cfg.NavigationTimeout)
		return
	}
	if js := handlerJS(cand.LinkRef); js != "" {
		_, _ = p.Eval("() => { " + js + " }")
		_, _ = p.Timeout(r.session.cfg.ElementTimeout).Element(strings.Join(viewerFrameSelectors, ", "))
	}
}

// locateLink finds the candidate's anchor on the live page: by DOM id,
// then by ref substring, then by the row description text.
func (r *Resolver) locateLink(p *rod.Page, cand procdoc.DocumentCandidate) (*rod.Element, error) {
	if cand.LinkID != "" {
		if has, el, err := p.Has("#" + cand.LinkID); err == nil && has {
			return el, nil
		}
	}

	if key := refSelectorKey(cand.LinkRef); key != "" {
		sel := `a[href*="` + key + `"], a[onclick*="` + key + `"]`
		if has, el, err := p.Has(sel); err == nil && has {
			return el, nil
		}
	}

	if cand.Description != "" {
		pattern := regexp.QuoteMeta(firstWords(cand.Description, 4))
		cell, err := p.Timeout(r.session.cfg.ElementTimeout).ElementR(movementDescCellLive, pattern)
		if err == nil {
			if a, err := cell.Element("a"); err == nil {
				return a, nil
			}
		}
	}

	return nil, procdoc.Errorf(procdoc.EPORTAL, "document link for %q not found on page", firstWords(cand.Description, 4))
}

// findViewerFrame returns the first viewer element present on the page.
func (r *Resolver) findViewerFrame(p *rod.Page) *rod.Element {
	for _, sel := range viewerFrameSelectors {
		if has, el, err := p.Has(sel); err == nil && has {
			return el
		}
	}
	return nil
}

// viewerURL extracts the document URL from a viewer frame's src.
func (r *Resolver) viewerURL(p *rod.Page) string {
	frame := r.findViewerFrame(p)
	if frame == nil {
		return ""
	}
	src, err := frame.Attribute("src")
	if err != nil || src == nil || *src == "" {
		return ""
	}
	return procdoc.AbsoluteURL(r.baseFor(p), procdoc.ViewerFileURL(*src))
}

// clickDownloadControl clicks the save button inside the frame's own
// document. Best effort: portals that stream the file on open need no
// click at all.
func (r *Resolver) clickDownloadControl(frameEl *rod.Element) {
	frame, err := frameEl.Frame()
	if err != nil {
		return
	}
	for _, sel := range downloadControlSelectors {
		has, el, err := frame.Has(sel)
		if err != nil || !has {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
			return
		}
	}
}

// baseFor picks the base for absolutizing refs: the page's own address
// when it has one, the portal origin otherwise.
func (r *Resolver) baseFor(p *rod.Page) string {
	if u := pageURL(p); u != "" {
		return u
	}
	return r.session.cfg.PortalOrigin()
}

// navigateTolerant navigates and waits for the load event, swallowing
// timeouts: document viewers frequently never fire load.
func navigateTolerant(p *rod.Page, url string, timeout time.Duration) {
	nav := p.Timeout(timeout)
	if err := nav.Navigate(url); err != nil {
		return
	}
	_ = nav.WaitLoad()
}

// navigableRef returns a ref the browser can navigate to: the ref itself
// when it is a path or URL, the URL inside its onclick payload otherwise.
func navigableRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return procdoc.HrefFromOnclick(ref)
}

// handlerJS returns the ref as a JS statement when it is an onclick
// payload rather than a URL.
func handlerJS(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ""
	}
	return ref
}

// refSelectorKey derives a substring usable inside an attribute selector
// to re-find the candidate's anchor. Refs carrying characters that would
// break the selector are rejected.
func refSelectorKey(ref string) string {
	key := strings.TrimSpace(ref)
	if h := procdoc.HrefFromOnclick(key); h != "" {
		key = h
	}
	if len(key) > 60 {
		key = key[:60]
	}
	if key == "" || key == "#" || strings.ContainsAny(key, "\"'\\\n") {
		return ""
	}
	return key
}

// firstWords truncates a description for matching and messages.
func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
