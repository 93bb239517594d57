// Package http fetches resolved documents over plain HTTP, outside the
// browser. Requests carry the exported browser session so the portal
// accepts them.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/procdoc/procdoc"
)

// DefaultFetchTimeout is the default timeout for document requests.
// Documents can run to hundreds of pages, so this is generous.
const DefaultFetchTimeout = 60 * time.Second

// Ensure Fetcher implements procdoc.DocumentFetcher at compile time.
var _ procdoc.DocumentFetcher = (*Fetcher)(nil)

// Fetcher retrieves document bytes from resolved URLs. It does not
// execute JavaScript; authentication comes entirely from the session
// cookies exported from the browser.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for document requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent sent when the exported session does
// not carry one.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a document fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// FetchDocument downloads the document at url using the exported browser
// session. Transport failures return ENETWORK; a response outside the 2xx
// range returns EINTERNAL with the status in the message.
func (f *Fetcher) FetchDocument(ctx context.Context, url string, session procdoc.FetchSession) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, procdoc.Errorf(procdoc.EINVALID, "building document request: %v", err)
	}

	for _, c := range session.Cookies {
		req.AddCookie(c)
	}
	switch {
	case session.UserAgent != "":
		req.Header.Set("User-Agent", session.UserAgent)
	case f.userAgent != "":
		req.Header.Set("User-Agent", f.userAgent)
	}
	if session.Referer != "" {
		req.Header.Set("Referer", session.Referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, procdoc.Errorf(procdoc.ENETWORK, "fetching document: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, procdoc.Errorf(procdoc.EINTERNAL, "document fetch returned HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, procdoc.Errorf(procdoc.ENETWORK, "reading document body: %v", err)
	}

	return body, nil
}

// Close releases resources. A no-op for the plain HTTP fetcher.
func (f *Fetcher) Close() error {
	return nil
}
