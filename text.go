package procdoc

import (
	"context"
	"net/http"
)

// DocumentTextResult is the outcome of fetching a resolved document and
// extracting its text.
type DocumentTextResult struct {
	// Text is the extracted plain text.
	Text string `json:"text"`

	// PageCount is the number of pages in the source document.
	PageCount int `json:"page_count"`

	// Source is the resolved URL the document was fetched from.
	Source string `json:"source"`

	// Description is carried over from the selected candidate.
	Description string `json:"description"`
}

// FetchSession carries the browser session state a fetch outside the
// browser needs to be accepted by the portal.
type FetchSession struct {
	// Cookies are the portal session cookies at export time.
	Cookies []*http.Cookie

	// UserAgent matches the browser's user agent string.
	UserAgent string

	// Referer is the case page the document was linked from.
	Referer string
}

// SessionExporter captures a live page's transport state so documents can
// be fetched without driving the browser.
type SessionExporter interface {
	ExportSession(ctx context.Context, page *CasePage) (FetchSession, error)
}

// DocumentFetcher retrieves document bytes from a resolved URL.
type DocumentFetcher interface {
	// FetchDocument downloads the document using the exported session.
	// Transport failures return ENETWORK; non-2xx responses return
	// EINTERNAL with the status in the message.
	FetchDocument(ctx context.Context, url string, session FetchSession) ([]byte, error)
}

// TextParser extracts plain text from document bytes.
type TextParser interface {
	// ParseText returns the document text and page count. A structurally
	// valid document with no extractable text returns ESCANNED; malformed
	// input returns EINVALID.
	ParseText(data []byte) (text string, pageCount int, err error)
}
