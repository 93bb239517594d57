package procdoc

import (
	"net/url"
	"regexp"
	"strings"
)

// Markers for the portal's document endpoints. Candidate scanning and URL
// resolution both key off these, so they live in the domain package.
const (
	// DirectPDFMarker appears in links that serve the document bytes
	// directly.
	DirectPDFMarker = "getPDF.do"

	// DocumentOpenMarker appears in links that open a document viewer for
	// a movement's attachment.
	DocumentOpenMarker = "abrirDocumentoVinculadoMovimentacao.do"

	// PasswordMarker appears in rows whose document is released only with
	// case credentials.
	PasswordMarker = "liberarAutoPorSenha"
)

// documentIDParams are the query parameters, in priority order, that carry
// a document identifier in portal links.
var documentIDParams = []string{"idDocumento", "cdDocumento", "nuSeqDoc"}

// IsDirectPDFHref reports whether ref serves document bytes directly.
func IsDirectPDFHref(ref string) bool {
	return strings.Contains(ref, DirectPDFMarker)
}

// IsDocumentOpenHref reports whether ref goes through the document viewer
// routine.
func IsDocumentOpenHref(ref string) bool {
	return strings.Contains(ref, DocumentOpenMarker)
}

// DocumentIDFromRef extracts the document identifier from a portal link.
// Returns the empty string when none of the known parameters is present or
// the ref does not parse as a URL.
func DocumentIDFromRef(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	q := u.Query()
	for _, key := range documentIDParams {
		if v := q.Get(key); v != "" {
			return v
		}
	}
	return ""
}

// BuildPDFURL reconstructs a direct document URL from a document id,
// bypassing the viewer. base is the portal origin (scheme and host).
func BuildPDFURL(base, docID string) string {
	return strings.TrimRight(base, "/") + "/pastadigital/getPDF.do?idDocumento=" + url.QueryEscape(docID)
}

// onclickURLPattern matches the first quoted URL-like argument of a JS
// handler, e.g. onclick="abrirDocumento('/cpopg/abrir...do?x=1');".
var onclickURLPattern = regexp.MustCompile(`['"]((?:https?://|/)[^'"]+?\.do[^'"]*)['"]`)

// HrefFromOnclick pulls the navigation target out of a JS onclick payload.
// Returns the empty string when no URL-shaped argument is found.
func HrefFromOnclick(onclick string) string {
	m := onclickURLPattern.FindStringSubmatch(onclick)
	if m == nil {
		return ""
	}
	return m[1]
}

// ViewerFileURL returns the document URL embedded in a viewer src through
// its file query parameter, already URL-decoded. When the parameter is
// absent the src is returned verbatim.
func ViewerFileURL(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	if f := u.Query().Get("file"); f != "" {
		return f
	}
	return src
}

// AbsoluteURL resolves ref against the page it was found on. Already
// absolute refs come back unchanged; an unparsable base or ref comes back
// verbatim rather than empty.
func AbsoluteURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// HasPasswordMarker reports whether the row markup or link ref carries the
// credential-gate marker.
func HasPasswordMarker(s string) bool {
	return strings.Contains(s, PasswordMarker)
}
