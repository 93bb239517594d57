// Package trafilatura extracts the case record content from portal pages.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/procdoc/procdoc"
	"golang.org/x/net/html"
)

// Ensure Extractor implements procdoc.Extractor at compile time.
var _ procdoc.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to pull the case record out of a portal
// page, dropping the surrounding chrome.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw case page HTML and returns the record content.
func (e *Extractor) Extract(rawHTML string) (*procdoc.ExtractResult, error) {
	if rawHTML == "" {
		return nil, procdoc.Errorf(procdoc.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,

		// Case pages are mostly tables. Recall keeps the movement rows
		// that precision heuristics trim as boilerplate.
		FavorRecall: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &procdoc.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
