package procdoc

import (
	"context"
	"time"
)

// CaseRecord is the archived form of a located case: its identity on the
// portal plus the most recent movement scrape.
type CaseRecord struct {
	ID             string      `json:"id"`
	ProtocolNumber string      `json:"protocolNumber"`
	CasePageURL    string      `json:"casePageUrl"`
	Details        CaseDetails `json:"details"`
	MovementsText  string      `json:"movementsText"`
	ContentHash    string      `json:"contentHash"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *CaseRecord) Validate() error {
	if r.ProtocolNumber == "" {
		return Errorf(EINVALID, "case protocol number required")
	}
	return nil
}

// CaseService manages the local archive of located cases.
type CaseService interface {
	// UpsertCase creates the record or refreshes the existing one for the
	// same protocol number.
	UpsertCase(ctx context.Context, rec *CaseRecord) error

	// FindCaseByProtocol retrieves a case by its protocol number.
	// Returns ENOTFOUND if the case was never archived.
	FindCaseByProtocol(ctx context.Context, protocolNumber string) (*CaseRecord, error)

	// FindCases retrieves cases matching the filter.
	FindCases(ctx context.Context, filter CaseFilter) ([]*CaseRecord, error)

	// DeleteCase permanently removes a case and its retrievals.
	// Returns ENOTFOUND if the case does not exist.
	DeleteCase(ctx context.Context, id string) error
}

// CaseFilter represents a filter for FindCases.
type CaseFilter struct {
	ID             *string `json:"id"`
	ProtocolNumber *string `json:"protocolNumber"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Retrieval kinds recorded in the archive.
const (
	RetrievalKindSearch    = "search"
	RetrievalKindMovements = "movements"
	RetrievalKindURL       = "url"
	RetrievalKindDownload  = "download"
	RetrievalKindText      = "text"
)

// Retrieval records one completed retrieval operation against a case.
type Retrieval struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"caseId"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	FilePath    string    `json:"filePath"`
	Strategy    string    `json:"strategy"`
	PageCount   int       `json:"pageCount"`
	ContentHash string    `json:"contentHash"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the retrieval contains invalid fields.
func (r *Retrieval) Validate() error {
	if r.CaseID == "" {
		return Errorf(EINVALID, "retrieval case ID required")
	}
	switch r.Kind {
	case RetrievalKindSearch, RetrievalKindMovements, RetrievalKindURL, RetrievalKindDownload, RetrievalKindText:
		return nil
	default:
		return Errorf(EINVALID, "unknown retrieval kind %q", r.Kind)
	}
}

// RetrievalService manages the archive of completed retrievals.
type RetrievalService interface {
	// CreateRetrieval records a completed retrieval.
	CreateRetrieval(ctx context.Context, r *Retrieval) error

	// FindRetrievals retrieves records matching the filter, most recent
	// first.
	FindRetrievals(ctx context.Context, filter RetrievalFilter) ([]*Retrieval, error)
}

// RetrievalFilter represents a filter for FindRetrievals.
type RetrievalFilter struct {
	CaseID *string `json:"caseId"`
	Kind   *string `json:"kind"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
