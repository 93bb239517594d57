package procdoc

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// Movement is a single entry in a case's movement history. Date stays in
// the portal's display format; no timezone interpretation is applied.
type Movement struct {
	Date        string `json:"date"`
	Description string `json:"description"`
}

// CaseDetails holds the header metadata scraped from a case page. Fields
// whose label is absent from the page are left empty.
type CaseDetails struct {
	CaseNumber string   `json:"case_number"`
	Class      string   `json:"class"`
	Subject    string   `json:"subject"`
	Forum      string   `json:"forum"`
	Court      string   `json:"court"`
	Judge      string   `json:"judge"`
	Parties    []string `json:"parties"`
}

// MovementsResult is the outcome of scraping a case's movement history.
type MovementsResult struct {
	ProtocolNumber string      `json:"protocol_number"`
	Details        CaseDetails `json:"details"`
	Movements      []Movement  `json:"movements"`

	// Text is the cleaned composite form of the details and movements,
	// suitable for indexing or prompting.
	Text string `json:"text"`

	// HTML is the case page markup the result was parsed from. Carried so
	// callers can snapshot the page without a second visit; not serialized.
	HTML string `json:"-"`

	SourceURL   string    `json:"source_url"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// MovementsExtractor scrapes the movement history for a protocol number.
type MovementsExtractor interface {
	// ExtractMovements locates the case, expands the full movement table
	// and returns the parsed history. A case page with no movement data
	// returns EPORTAL.
	ExtractMovements(ctx context.Context, protocolNumber string, progress ProgressFunc) (*MovementsResult, error)
}

// FormatMovements composes the canonical text form of a case: labeled
// header lines, a parties block, then one line per movement. Empty fields
// are omitted. The output is deterministic for equal inputs.
func FormatMovements(details CaseDetails, movements []Movement) string {
	var b strings.Builder

	header := []struct {
		label string
		value string
	}{
		{"Processo", details.CaseNumber},
		{"Classe", details.Class},
		{"Assunto", details.Subject},
		{"Foro", details.Forum},
		{"Vara", details.Court},
		{"Juiz", details.Judge},
	}
	for _, h := range header {
		if h.value == "" {
			continue
		}
		b.WriteString(h.label)
		b.WriteString(": ")
		b.WriteString(h.value)
		b.WriteString("\n")
	}

	if len(details.Parties) > 0 {
		b.WriteString("\nPARTES\n")
		for _, p := range details.Parties {
			if p == "" {
				continue
			}
			b.WriteString(p)
			b.WriteString("\n")
		}
	}

	if len(movements) > 0 {
		b.WriteString("\nMOVIMENTAÇÕES\n")
		for _, m := range movements {
			switch {
			case m.Date != "" && m.Description != "":
				b.WriteString(m.Date)
				b.WriteString(" - ")
				b.WriteString(m.Description)
			case m.Description != "":
				b.WriteString(m.Description)
			default:
				b.WriteString(m.Date)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// CleanMovementsText normalizes scraped movement text: line endings become
// LF, trailing whitespace is trimmed per line, runs of three or more
// spaces or tabs collapse to two spaces, runs of blank lines collapse to
// one, and an all-caps section heading gets a blank line before it.
// The function is idempotent: Clean(Clean(s)) == Clean(s).
func CleanMovementsText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = collapseSpacing(strings.TrimRight(line, " \t"))
	}

	var out []string
	for _, line := range lines {
		if line == "" {
			// At most one blank line in a row.
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		if isSectionHeading(line) && len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// collapseSpacing replaces each run of three or more spaces or tabs with
// two spaces. Shorter runs become spaces of the same width.
func collapseSpacing(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	run := 0
	flush := func() {
		if run >= 3 {
			b.WriteString("  ")
		} else {
			b.WriteString(strings.Repeat(" ", run))
		}
		run = 0
	}
	for _, r := range line {
		if r == ' ' || r == '\t' {
			run++
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}

// isSectionHeading reports whether a line looks like a section boundary:
// it contains uppercase letters and no lowercase ones.
func isSectionHeading(line string) bool {
	hasUpper := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
