package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/procdoc/procdoc"
)

// detailKeywords maps case header fields to the label keywords that
// identify them, lowercased. Matching is contains-based so label
// variations like "Juiz(a)" or a trailing colon still hit.
var detailKeywords = map[string][]string{
	"class":   {"classe"},
	"subject": {"assunto"},
	"forum":   {"foro"},
	"court":   {"vara"},
	"judge":   {"juiz", "juíz"},
}

// partyRoleKeywords identify rows of the parties table that name an actual
// party. Rows with other roles (witnesses, experts) are skipped.
var partyRoleKeywords = []string{
	"reqte", "reqda", "reqdo", "requerente", "requerido", "requerida",
	"autor", "autora", "réu", "ré",
	"exeqte", "exectdo", "exectda", "exequente", "executado", "executada",
	"apelante", "apelado", "apelada",
	"agravante", "agravado", "agravada",
	"embargte", "embargdo", "embargda",
	"imptte", "impdo", "impda", "impetrante", "impetrado",
	"reclamante", "reclamado", "reclamada",
}

// protocolPattern matches a formatted protocol number anywhere in text.
var protocolPattern = regexp.MustCompile(`\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}`)

// ParseCaseDetails scrapes the header metadata from a case page. Absent
// labels leave their field empty; the function only fails when the HTML
// itself does not parse.
func ParseCaseDetails(html string) (procdoc.CaseDetails, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return procdoc.CaseDetails{}, err
	}

	details := procdoc.CaseDetails{
		CaseNumber: cellText(doc.Find(caseNumberEl).First()),
	}
	if details.CaseNumber == "" {
		details.CaseNumber = protocolPattern.FindString(doc.Selection.Text())
	}

	fields := map[string]*string{
		"class":   &details.Class,
		"subject": &details.Subject,
		"forum":   &details.Forum,
		"court":   &details.Court,
		"judge":   &details.Judge,
	}
	scanLabeledValues(doc, func(label, value string) {
		for field, keywords := range detailKeywords {
			dst := fields[field]
			if *dst != "" {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(label, kw) {
					*dst = value
					break
				}
			}
		}
	})

	details.Parties = parseParties(doc)

	return details, nil
}

// scanLabeledValues walks the page's label/value pairs. The portal renders
// them two ways: classic two-column table rows, and label spans followed
// by a value element. Both feed the same visitor with folded labels.
func scanLabeledValues(doc *goquery.Document, visit func(label, value string)) {
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := foldText(cells.First().Text())
		value := cellText(cells.Eq(1))
		if label != "" && value != "" {
			visit(label, value)
		}
	})

	doc.Find("span.unj-label, .labelClass").Each(func(_ int, labelEl *goquery.Selection) {
		label := foldText(labelEl.Text())
		value := cellText(labelEl.NextFiltered("div, span"))
		if value == "" {
			value = cellText(labelEl.Parent().Find("div, span").Eq(1))
		}
		if label != "" && value != "" {
			visit(label, value)
		}
	})
}

// parseParties collects "Role Name" lines from the parties table,
// preferring the expanded list when present.
func parseParties(doc *goquery.Document) []string {
	table := doc.Find(partiesTableAll)
	if table.Length() == 0 {
		table = doc.Find(partiesTable)
	}

	var parties []string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		role := cellText(row.Find(partyRoleCell).First())
		if role == "" || !matchesPartyRole(strings.ToLower(role)) {
			return
		}
		name := partyName(row.Find(partyNameCell).First())
		if name == "" {
			return
		}
		parties = append(parties, role+" "+name)
	})
	return parties
}

// partyName returns the party's own name, without the advocate lines the
// portal nests into the same cell.
func partyName(cell *goquery.Selection) string {
	clone := cell.Clone()
	clone.Find(".mensagemExibindo, .nomeAdvogado").Remove()
	name := cellText(clone)
	// The advocate block, when not wrapped in a known class, follows the
	// literal "Advogad" prefix.
	if i := strings.Index(name, "Advogad"); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	return name
}

func matchesPartyRole(role string) bool {
	for _, kw := range partyRoleKeywords {
		if strings.Contains(role, kw) {
			return true
		}
	}
	return false
}

// ParseMovements scrapes the movement history rows from a case page. The
// full table wins; the abbreviated table only contributes rows the full
// table does not already carry.
func ParseMovements(html string) ([]procdoc.Movement, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	var movements []procdoc.Movement
	seen := make(map[string]bool)

	doc.Find(movementTableAll + " tr, " + movementTableRecent + " tr").Each(func(_ int, row *goquery.Selection) {
		date := cellText(row.Find(movementDateCell))
		desc := cellText(row.Find(movementDescCell))
		if date == "" && desc == "" {
			return
		}
		key := date + "|" + desc
		if seen[key] {
			return
		}
		seen[key] = true
		movements = append(movements, procdoc.Movement{Date: date, Description: desc})
	})

	return movements, nil
}
