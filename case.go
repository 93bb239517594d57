package procdoc

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode"
)

// NormalizeProtocol reduces a case protocol number to its digits-only form,
// the representation the portal search form expects. Spaces, dots, hyphens
// and any other non-digit characters are dropped. Calling it on an already
// normalized number is a no-op.
func NormalizeProtocol(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// protocolDigits is the length of a protocol number under the national
// numbering standard (NNNNNNN-DD.AAAA.J.TR.OOOO).
const protocolDigits = 20

// ValidateProtocol returns EINVALID unless the normalized form of s is a
// complete protocol number.
func ValidateProtocol(s string) error {
	n := NormalizeProtocol(s)
	if n == "" {
		return Errorf(EINVALID, "protocol number required")
	}
	if len(n) != protocolDigits {
		return Errorf(EINVALID, "protocol number %q must have %d digits, got %d", s, protocolDigits, len(n))
	}
	return nil
}

// ResultClass classifies the page the portal lands on after a search.
type ResultClass int

const (
	// ResultAmbiguous means the page matched neither the found nor the
	// not-found signature. Treated as an error, never silently mapped to
	// either outcome.
	ResultAmbiguous ResultClass = iota

	// ResultFound means the page shows a case record.
	ResultFound

	// ResultNotFound means the portal reported no case for the query.
	ResultNotFound
)

// String returns the class name for logging.
func (c ResultClass) String() string {
	switch c {
	case ResultFound:
		return "found"
	case ResultNotFound:
		return "not_found"
	default:
		return "ambiguous"
	}
}

// PageHandle is the minimal surface the domain needs from a live portal
// tab. The browser implementation provides the concrete type.
type PageHandle interface {
	Close() error
}

// CasePage is an exclusively owned handle to a live portal tab positioned
// on a case record. Ownership transfers by passing the pointer; whoever
// holds it last must close it. Close is idempotent so every layer on the
// path may defer it without double-close concerns.
type CasePage struct {
	handle PageHandle
	url    string
	closed atomic.Bool
}

// NewCasePage wraps a live page handle with its current URL.
func NewCasePage(handle PageHandle, url string) *CasePage {
	return &CasePage{handle: handle, url: url}
}

// URL returns the address of the case record page.
func (p *CasePage) URL() string {
	return p.url
}

// Handle exposes the underlying page for implementation packages.
// Returns nil after Close.
func (p *CasePage) Handle() PageHandle {
	if p.closed.Load() {
		return nil
	}
	return p.handle
}

// Close releases the underlying page. Safe to call more than once; only
// the first call reaches the handle.
func (p *CasePage) Close() error {
	if p == nil || !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if p.handle == nil {
		return nil
	}
	return p.handle.Close()
}

// CaseSearchResult is the outcome of searching the portal for a protocol
// number. A search that completes but finds nothing is a successful search:
// Found is false and no error is returned.
type CaseSearchResult struct {
	// Found reports whether the portal showed a case record.
	Found bool

	// ProtocolNumber is the number as given by the caller.
	ProtocolNumber string

	// CasePageURL is the address the portal landed on. Empty when not found.
	CasePageURL string

	// Page is the live case page, owned by the receiver. Nil when not found.
	Page *CasePage
}

// CaseLocator drives the portal search flow for a protocol number.
type CaseLocator interface {
	// LocateCase searches the portal and classifies the landing page.
	// Not-found is a normal outcome (Found false, nil error). An ambiguous
	// landing page returns EAMBIGUOUS. A missing search control returns
	// EPORTAL. On Found the caller owns result.Page and must close it.
	LocateCase(ctx context.Context, protocolNumber string, progress ProgressFunc) (*CaseSearchResult, error)
}
