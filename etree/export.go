// Package etree renders archived cases as XML documents.
package etree

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/procdoc/procdoc"
)

// Exporter renders a case record and its retrieval history as an indented
// XML document. Empty fields are omitted.
type Exporter struct{}

// NewExporter creates a new Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export renders the case and its retrievals.
func (e *Exporter) Export(rec *procdoc.CaseRecord, retrievals []*procdoc.Retrieval) (string, error) {
	if rec == nil {
		return "", procdoc.Errorf(procdoc.EINVALID, "case record required")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("case")
	if rec.ID != "" {
		root.CreateAttr("id", rec.ID)
	}
	root.CreateAttr("protocol", rec.ProtocolNumber)
	if !rec.UpdatedAt.IsZero() {
		root.CreateAttr("updatedAt", rec.UpdatedAt.UTC().Format(time.RFC3339))
	}

	addText(root, "url", rec.CasePageURL)

	if d := rec.Details; d.CaseNumber != "" || d.Class != "" || d.Subject != "" ||
		d.Forum != "" || d.Court != "" || d.Judge != "" || len(d.Parties) > 0 {
		details := root.CreateElement("details")
		addText(details, "caseNumber", d.CaseNumber)
		addText(details, "class", d.Class)
		addText(details, "subject", d.Subject)
		addText(details, "forum", d.Forum)
		addText(details, "court", d.Court)
		addText(details, "judge", d.Judge)
		if len(d.Parties) > 0 {
			parties := details.CreateElement("parties")
			for _, p := range d.Parties {
				parties.CreateElement("party").SetText(p)
			}
		}
	}

	if rec.MovementsText != "" {
		movements := root.CreateElement("movements")
		if rec.ContentHash != "" {
			movements.CreateAttr("hash", rec.ContentHash)
		}
		movements.SetText(rec.MovementsText)
	}

	if len(retrievals) > 0 {
		list := root.CreateElement("retrievals")
		for _, r := range retrievals {
			el := list.CreateElement("retrieval")
			el.CreateAttr("kind", r.Kind)
			if !r.CreatedAt.IsZero() {
				el.CreateAttr("at", r.CreatedAt.UTC().Format(time.RFC3339))
			}
			addText(el, "description", r.Description)
			addText(el, "url", r.URL)
			addText(el, "filePath", r.FilePath)
			addText(el, "strategy", r.Strategy)
			if r.PageCount > 0 {
				el.CreateElement("pageCount").SetText(strconv.Itoa(r.PageCount))
			}
			addText(el, "contentHash", r.ContentHash)
		}
	}

	doc.Indent(2)
	return doc.WriteToString()
}

// addText appends a child element with text, omitting empty values.
func addText(parent *etree.Element, tag, text string) {
	if text == "" {
		return
	}
	parent.CreateElement(tag).SetText(text)
}
