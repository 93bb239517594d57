package goquery

import (
	"strings"

	"github.com/procdoc/procdoc"
)

// successMarkers are elements that only exist on a real case page.
var successMarkers = []string{
	movementTableAll,
	movementTableRecent,
	caseNumberEl,
	partiesTable,
}

// failureTokens are phrases the portal prints when a search yields
// nothing. Matching is case-insensitive on flattened text.
var failureTokens = []string{
	"não existem informações disponíveis para os parâmetros informados",
	"não foi possível localizar o processo",
	"nenhum processo encontrado",
}

// ClassifyResultPage decides what the portal's answer to a search was.
// Success markers win over failure tokens: a page that shows a case record
// is a found case no matter what else it prints. A page with neither
// signature is ambiguous, which callers must treat as an error rather
// than guess.
func ClassifyResultPage(html string) (procdoc.ResultClass, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return procdoc.ResultAmbiguous, err
	}

	for _, sel := range successMarkers {
		if doc.Find(sel).Length() > 0 {
			return procdoc.ResultFound, nil
		}
	}

	text := foldText(doc.Selection.Text())
	for _, token := range failureTokens {
		if strings.Contains(text, token) {
			return procdoc.ResultNotFound, nil
		}
	}

	return procdoc.ResultAmbiguous, nil
}
