// Package rod drives the portal through a headless browser. It owns the
// browser lifecycle and implements the domain's locator, finder, resolver
// and movements interfaces on live pages. All markup interpretation is
// delegated to the goquery package so it stays testable without a browser.
package rod

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/procdoc/procdoc"
)

// Ensure Session implements procdoc.SessionExporter.
var _ procdoc.SessionExporter = (*Session)(nil)

// DefaultMaxPages is how many pages a browser serves before it is recycled.
const DefaultMaxPages = 75

// Session owns the headless browser behind all portal operations. The
// browser launches lazily on first use; before reuse a liveness probe runs
// and a dead browser is relaunched transparently. After DefaultMaxPages
// pages the browser is recycled for a fresh one. Session is safe for
// concurrent use.
type Session struct {
	cfg      procdoc.Config
	logger   *slog.Logger
	maxPages int64

	mu        sync.Mutex
	browser   *rod.Browser
	launcher  *launcher.Launcher
	closed    atomic.Bool
	pageCount atomic.Int64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithMaxPages sets how many pages a browser serves before it is recycled.
// Defaults to DefaultMaxPages.
func WithMaxPages(n int64) SessionOption {
	return func(s *Session) {
		s.maxPages = n
	}
}

// NewSession creates a Session for the given portal config. No browser is
// launched until the first operation needs one. Close must be called when
// the Session is no longer needed.
func NewSession(cfg procdoc.Config, opts ...SessionOption) *Session {
	s := &Session{
		cfg:      cfg,
		logger:   slog.Default(),
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Browser returns a live browser, launching or relaunching as needed.
func (s *Session) Browser() (*rod.Browser, error) {
	if s.closed.Load() {
		return nil, procdoc.Errorf(procdoc.EBROWSER, "browser session is closed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		if _, err := s.browser.Version(); err == nil {
			if s.pageCount.Load() >= s.maxPages {
				s.recycleLocked()
			}
			return s.browser, nil
		}
		s.logger.Warn("browser liveness probe failed, relaunching")
		s.teardownLocked()
	}

	if err := s.launchLocked(); err != nil {
		return nil, err
	}
	return s.browser, nil
}

// NewPage opens a blank tab bound to ctx, with downloads routed to the
// configured directory.
func (s *Session) NewPage(ctx context.Context) (*rod.Page, error) {
	browser, err := s.Browser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, procdoc.Errorf(procdoc.EBROWSER, "opening page: %v", err)
	}
	s.pageCount.Add(1)
	page = page.Context(ctx)
	s.ConfigureDownloads(page)
	return page, nil
}

// ConfigureDownloads points the page's downloads at the configured
// directory. Best effort: a failure is logged and browsing continues,
// since most operations never download.
func (s *Session) ConfigureDownloads(page *rod.Page) {
	if s.cfg.DownloadDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.DownloadDir, 0o755); err != nil {
		s.logger.Warn("creating download directory", "dir", s.cfg.DownloadDir, "err", err)
		return
	}
	err := proto.PageSetDownloadBehavior{
		Behavior:     proto.PageSetDownloadBehaviorBehaviorAllow,
		DownloadPath: s.cfg.DownloadDir,
	}.Call(page)
	if err != nil {
		s.logger.Warn("configuring download behavior", "dir", s.cfg.DownloadDir, "err", err)
	}
}

// ExportSession captures the page's cookies for fetches made outside the
// browser, together with the user agent and the page URL as referer.
func (s *Session) ExportSession(ctx context.Context, page *procdoc.CasePage) (procdoc.FetchSession, error) {
	p, err := livePage(page)
	if err != nil {
		return procdoc.FetchSession{}, err
	}

	cookies, err := p.Context(ctx).Cookies(nil)
	if err != nil {
		return procdoc.FetchSession{}, procdoc.Errorf(procdoc.EBROWSER, "reading session cookies: %v", err)
	}

	sess := procdoc.FetchSession{
		UserAgent: s.cfg.UserAgent,
		Referer:   page.URL(),
	}
	for _, c := range cookies {
		sess.Cookies = append(sess.Cookies, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	return sess, nil
}

// Close shuts down the browser and launcher. Safe to call multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.teardownLocked()
}

// launchLocked starts a browser with the stability flag set. Must be
// called with mu held.
func (s *Session) launchLocked() error {
	bin, err := FindExecutable(s.cfg)
	if err != nil {
		return err
	}

	lnchr := launcher.New().
		Bin(bin).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(s.cfg.Headless)

	u, err := lnchr.Launch()
	if err != nil {
		return procdoc.Errorf(procdoc.EBROWSER, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return procdoc.Errorf(procdoc.EBROWSER, "connecting to browser: %v", err)
	}

	s.browser = browser
	s.launcher = lnchr
	s.pageCount.Store(0)
	s.logger.Info("browser launched", "bin", bin, "headless", s.cfg.Headless)
	return nil
}

// teardownLocked shuts down the current browser and launcher. Must be
// called with mu held.
func (s *Session) teardownLocked() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}

// recycleLocked replaces the browser with a fresh one. Chrome's memory
// baseline grows with every page served and never returns to its initial
// level, so long batch runs need a periodic fresh start. The old browser
// is kept if the new launch fails. Must be called with mu held.
func (s *Session) recycleLocked() {
	old, oldLauncher := s.browser, s.launcher
	s.browser, s.launcher = nil, nil

	if err := s.launchLocked(); err != nil {
		s.logger.Warn("browser recycle failed, keeping current browser", "err", err)
		s.browser, s.launcher = old, oldLauncher
		return
	}

	if old != nil {
		_ = old.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	s.logger.Info("browser recycled", "max_pages", s.maxPages)
}

// systemBrowserPaths are checked after the configured path and cache scan.
var systemBrowserPaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
}

// browserBinaryNames are the executable names a cache scan accepts.
var browserBinaryNames = map[string]bool{
	"chrome":         true,
	"chromium":       true,
	"headless_shell": true,
}

// maxCacheScanDepth bounds the cache directory walk.
const maxCacheScanDepth = 6

// FindExecutable resolves the browser binary: the configured path wins,
// then a bounded scan of the cache directory, then well-known system
// locations, then the launcher's own lookup. Exhausting all of them is
// EBROWSER.
func FindExecutable(cfg procdoc.Config) (string, error) {
	if cfg.BrowserPath != "" {
		if isExecutableFile(cfg.BrowserPath) {
			return cfg.BrowserPath, nil
		}
		return "", procdoc.Errorf(procdoc.EBROWSER, "configured browser %q is not an executable file", cfg.BrowserPath)
	}

	cacheDir := cfg.BrowserCacheDir
	if cacheDir == "" {
		cacheDir = launcher.DefaultBrowserDir
	}
	if p := scanForBrowser(cacheDir); p != "" {
		return p, nil
	}

	for _, p := range systemBrowserPaths {
		if isExecutableFile(p) {
			return p, nil
		}
	}

	if p, ok := launcher.LookPath(); ok {
		return p, nil
	}

	return "", procdoc.Errorf(procdoc.EBROWSER, "no browser executable found; install Chrome or Chromium, or set the browser path")
}

// scanForBrowser walks dir up to maxCacheScanDepth levels looking for a
// browser binary. Candidates whose path mentions chrome are preferred,
// then those mentioning linux, then the shortest path, so the choice is
// deterministic across runs.
func scanForBrowser(dir string) string {
	if dir == "" {
		return ""
	}

	var candidates []string
	root := filepath.Clean(dir)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr == nil && strings.Count(rel, string(filepath.Separator)) >= maxCacheScanDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if browserBinaryNames[d.Name()] && isExecutableFile(path) {
			candidates = append(candidates, path)
		}
		return nil
	})

	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := browserPathScore(candidates[i]), browserPathScore(candidates[j])
		if si != sj {
			return si > sj
		}
		return len(candidates[i]) < len(candidates[j])
	})
	return candidates[0]
}

func browserPathScore(path string) int {
	lower := strings.ToLower(path)
	score := 0
	if strings.Contains(lower, "chrome") {
		score += 2
	}
	if strings.Contains(lower, "linux") {
		score++
	}
	return score
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

// livePage unwraps the browser page behind a domain case page.
func livePage(page *procdoc.CasePage) (*rod.Page, error) {
	if page == nil {
		return nil, procdoc.Errorf(procdoc.EINVALID, "case page required")
	}
	h := page.Handle()
	if h == nil {
		return nil, procdoc.Errorf(procdoc.EINVALID, "case page is already closed")
	}
	p, ok := h.(*rod.Page)
	if !ok {
		return nil, procdoc.Errorf(procdoc.EINVALID, "case page does not wrap a browser page")
	}
	return p, nil
}
