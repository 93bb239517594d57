// Package goquery implements portal markup parsing. Everything here is
// pure HTML-in, values-out; driving the live browser is the rod package's
// job. Keeping the two apart makes the portal's markup knowledge testable
// against fixtures.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/procdoc/procdoc"
)

// Selectors for the portal's case page markup.
const (
	// movementTableAll holds the complete movement history once expanded.
	movementTableAll = "tbody#tabelaTodasMovimentacoes"

	// movementTableRecent holds the abbreviated history shown by default.
	movementTableRecent = "tbody#tabelaUltimasMovimentacoes"

	// movementDateCell and movementDescCell are the two columns of a
	// movement row.
	movementDateCell = "td.dataMovimentacao"
	movementDescCell = "td.descricaoMovimentacao"

	// caseNumberEl carries the formatted protocol number on a case page.
	caseNumberEl = "#numeroProcesso"

	// partiesTable lists the principal parties; partiesTableAll appears
	// when the full list is expanded.
	partiesTable    = "#tablePartesPrincipais"
	partiesTableAll = "#tableTodasPartes"

	// partyRoleCell and partyNameCell are the two columns of a party row.
	partyRoleCell = "td.label"
	partyNameCell = "td.nomeParteEAdvogado"

	// messageArea is where the portal prints search feedback, including
	// the not-found message.
	messageArea = "#mensagemRetorno"
)

// parseDoc parses page HTML, mapping parse failures to EINVALID.
func parseDoc(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, procdoc.Errorf(procdoc.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// cellText flattens an element's text to single-spaced form.
func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// foldText lowercases flattened text for case-insensitive matching.
func foldText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
