package main

import (
	"fmt"
	"strings"

	"github.com/procdoc/procdoc"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	rec, err := deps.Cases.FindCaseByProtocol(deps.Ctx, c.Protocol)
	if err != nil {
		if procdoc.ErrorCode(err) == procdoc.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: no archive for %q. Run 'procdoc search %s' first.\n", c.Protocol, c.Protocol)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Case %s\n", rec.ProtocolNumber)
	if rec.CasePageURL != "" {
		fmt.Fprintf(deps.Stdout, "  %s\n", rec.CasePageURL)
	}
	if rec.Details.Class != "" {
		fmt.Fprintf(deps.Stdout, "  Classe: %s\n", rec.Details.Class)
	}
	if rec.Details.Subject != "" {
		fmt.Fprintf(deps.Stdout, "  Assunto: %s\n", rec.Details.Subject)
	}
	fmt.Fprintf(deps.Stdout, "  Archived %s, updated %s\n",
		rec.CreatedAt.Format("2006-01-02 15:04"), rec.UpdatedAt.Format("2006-01-02 15:04"))

	retrievals, err := deps.Retrievals.FindRetrievals(deps.Ctx, procdoc.RetrievalFilter{CaseID: &rec.ID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", procdoc.ErrorMessage(err))
		return err
	}

	if len(retrievals) == 0 {
		fmt.Fprintln(deps.Stdout, "\nNo retrievals recorded.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "\nRetrievals (%d):\n", len(retrievals))
	for _, r := range retrievals {
		fmt.Fprintf(deps.Stdout, "  %s\n", retrievalLine(r))
	}

	return nil
}

// retrievalLine formats one archived retrieval as a single row: when it
// happened, what kind it was, and the most useful thing it produced.
func retrievalLine(r *procdoc.Retrieval) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-9s", r.CreatedAt.Format("2006-01-02 15:04"), r.Kind)

	switch {
	case r.Description != "":
		b.WriteString("  " + r.Description)
	case r.FilePath != "":
		b.WriteString("  " + r.FilePath)
	case r.URL != "":
		b.WriteString("  " + r.URL)
	}

	if r.PageCount > 0 {
		fmt.Fprintf(&b, " (%d pages)", r.PageCount)
	}
	if r.Kind == procdoc.RetrievalKindDownload && r.FilePath != "" && r.Description != "" {
		b.WriteString(" -> " + r.FilePath)
	}

	return b.String()
}
