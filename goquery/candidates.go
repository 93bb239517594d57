package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/procdoc/procdoc"
)

// FindCandidates scans a case page for movement rows matching a document
// type phrase. A row matches when every whitespace-delimited token of the
// phrase appears in its description, case-insensitively. Rows come back in
// document order; rows without a locatable access link are skipped, and
// rows duplicated between the full and abbreviated movement tables are
// reported once.
func FindCandidates(html string, documentType string) ([]procdoc.DocumentCandidate, error) {
	tokens := strings.Fields(strings.ToLower(documentType))
	if len(tokens) == 0 {
		return nil, procdoc.Errorf(procdoc.EINVALID, "document type required")
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var candidates []procdoc.DocumentCandidate
	seen := make(map[string]bool)

	doc.Find(movementTableAll + " tr, " + movementTableRecent + " tr").Each(func(_ int, row *goquery.Selection) {
		desc := cellText(row.Find(movementDescCell))
		if desc == "" {
			desc = cellText(row)
		}
		if !matchesTokens(strings.ToLower(desc), tokens) {
			return
		}

		ref, id, ok := findRowLink(row)
		if !ok {
			return
		}

		key := cellText(row.Find(movementDateCell)) + "|" + desc + "|" + ref
		if seen[key] {
			return
		}
		seen[key] = true

		rowHTML, _ := goquery.OuterHtml(row)
		candidates = append(candidates, procdoc.DocumentCandidate{
			Description:      desc,
			LinkRef:          ref,
			LinkID:           id,
			RequiresPassword: procdoc.HasPasswordMarker(rowHTML) || procdoc.HasPasswordMarker(ref),
		})
	})

	return candidates, nil
}

// matchesTokens reports whether every token appears in the folded text.
func matchesTokens(folded string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(folded, tok) {
			return false
		}
	}
	return true
}

// findRowLink locates the access link in a movement row. Three strategies
// run in order: the anchor wrapping the document icon, anchors with known
// classes or document URL shapes, and finally any anchor whose href or
// onclick goes through the document viewer routine.
func findRowLink(row *goquery.Selection) (ref, id string, ok bool) {
	if ref, id, ok = firstUsableAnchor(row.Find("a:has(img)")); ok {
		return ref, id, true
	}

	if ref, id, ok = firstUsableAnchor(row.Find("a.linkMovVincProc, a.linkConsultaSG")); ok {
		return ref, id, true
	}
	if ref, id, ok = matchingAnchor(row, func(r string) bool {
		return procdoc.IsDirectPDFHref(r) || procdoc.IsDocumentOpenHref(r)
	}); ok {
		return ref, id, true
	}

	return matchingAnchor(row, procdoc.IsDocumentOpenHref)
}

// firstUsableAnchor returns the ref of the first anchor in the selection
// that has one.
func firstUsableAnchor(anchors *goquery.Selection) (ref, id string, ok bool) {
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		ref = anchorRef(a)
		if ref == "" {
			return true
		}
		id = a.AttrOr("id", "")
		ok = true
		return false
	})
	return ref, id, ok
}

// matchingAnchor returns the first anchor in the row whose ref satisfies
// the predicate.
func matchingAnchor(row *goquery.Selection, match func(string) bool) (ref, id string, ok bool) {
	row.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		r := anchorRef(a)
		if r == "" || !match(r) {
			return true
		}
		ref = r
		id = a.AttrOr("id", "")
		ok = true
		return false
	})
	return ref, id, ok
}

// anchorRef extracts the navigation target of an anchor: its href when it
// points somewhere, otherwise its onclick payload.
func anchorRef(a *goquery.Selection) string {
	href := strings.TrimSpace(a.AttrOr("href", ""))
	if href != "" && href != "#" && !strings.HasPrefix(href, "javascript:") {
		return href
	}
	return strings.TrimSpace(a.AttrOr("onclick", ""))
}
