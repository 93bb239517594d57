package procdoc

import "context"

// DocumentCandidate is a movement-table row whose description matched the
// requested document type, together with the access link found in that row.
type DocumentCandidate struct {
	// Description is the movement description text the match was made on.
	Description string

	// LinkRef is the raw link target: an href when the anchor has one,
	// otherwise the onclick payload.
	LinkRef string

	// LinkID is the DOM id of the anchor, when present. Used to re-locate
	// the element on the live page.
	LinkID string

	// RequiresPassword reports whether the row carries the portal's
	// credential-gate marker.
	RequiresPassword bool
}

// SelectCandidate picks the document to retrieve from a candidate list:
// the first candidate in document order that is not password gated.
// Returns ENOTFOUND for an empty list and ECREDENTIALS when every
// candidate is gated.
func SelectCandidate(candidates []DocumentCandidate) (DocumentCandidate, error) {
	if len(candidates) == 0 {
		return DocumentCandidate{}, Errorf(ENOTFOUND, "no matching documents found")
	}
	for _, c := range candidates {
		if !c.RequiresPassword {
			return c, nil
		}
	}
	return DocumentCandidate{}, Errorf(ECREDENTIALS, "all %d matching documents require credentials", len(candidates))
}

// DocumentDownloadResult is the outcome of resolving a document candidate,
// either to a direct URL or to a file on disk.
type DocumentDownloadResult struct {
	// URL is the resolved document address. Empty for binary downloads.
	URL string

	// FilePath is the downloaded file location. Empty for URL resolution.
	FilePath string

	// Description is carried over from the selected candidate.
	Description string

	// Strategy names the resolution strategy that produced the result.
	Strategy string
}

// CandidateFinder scans a live case page for documents of a given type.
type CandidateFinder interface {
	// FindCandidates expands the movement history when necessary and
	// returns matching rows in document order. An empty slice with a nil
	// error means the case simply has no such document. The page remains
	// owned by the caller.
	FindCandidates(ctx context.Context, page *CasePage, documentType string) ([]DocumentCandidate, error)
}

// DocumentResolver turns a selected candidate into a retrievable document.
type DocumentResolver interface {
	// ResolveURL runs the resolution strategy chain against the live page
	// and returns the first URL it yields. Returns EUNRESOLVED when every
	// strategy fails. The page remains owned by the caller, though its
	// location may change as strategies navigate.
	ResolveURL(ctx context.Context, page *CasePage, candidate DocumentCandidate, progress ProgressFunc) (*DocumentDownloadResult, error)

	// DownloadFile clicks through to the document and waits for the
	// browser download to land in the configured directory. Returns
	// EDOWNLOAD when no file appears within the polling schedule.
	DownloadFile(ctx context.Context, page *CasePage, candidate DocumentCandidate, progress ProgressFunc) (*DocumentDownloadResult, error)
}
