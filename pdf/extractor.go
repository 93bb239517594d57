// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/procdoc/procdoc"
)

// Ensure Extractor implements procdoc.TextParser.
var _ procdoc.TextParser = (*Extractor)(nil)

// Extractor pulls text out of PDF bytes. Whole-document extraction runs
// first; when it fails or comes back empty, pages are extracted one by
// one so a single broken page cannot blank the whole document.
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ParseText returns the document's plain text and page count. A PDF that
// parses but yields no text is a scan without an OCR layer and returns
// ESCANNED; bytes that are not a PDF return EINVALID. The parser library
// panics on some malformed files, so malformed input is trapped here
// rather than crashing the caller.
func (e *Extractor) ParseText(data []byte) (text string, pageCount int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pageCount = "", 0
			err = procdoc.Errorf(procdoc.EINVALID, "malformed PDF: %v", r)
		}
	}()

	if len(data) == 0 {
		return "", 0, procdoc.Errorf(procdoc.EINVALID, "empty document")
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, procdoc.Errorf(procdoc.EINVALID, "not a readable PDF: %v", err)
	}
	pageCount = r.NumPage()

	text = wholeDocumentText(r)
	if text == "" {
		text = perPageText(r)
	}
	if text == "" {
		return "", pageCount, procdoc.Errorf(procdoc.ESCANNED,
			"document has no extractable text across %d pages; it is likely a scan without an OCR layer", pageCount)
	}

	return text, pageCount, nil
}

// wholeDocumentText extracts the full document in one pass. Any failure
// returns "" so the caller falls back to per-page extraction.
func wholeDocumentText(r *pdf.Reader) string {
	defer func() { _ = recover() }()

	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// perPageText extracts each page independently, skipping pages that fail.
func perPageText(r *pdf.Reader) string {
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		text := pageText(r.Page(i))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return strings.TrimSpace(b.String())
}

func pageText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
