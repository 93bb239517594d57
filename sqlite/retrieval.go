package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procdoc/procdoc"
)

// Compile-time interface verification.
var _ procdoc.RetrievalService = (*RetrievalService)(nil)

// RetrievalService implements procdoc.RetrievalService using SQLite.
type RetrievalService struct {
	db *DB
}

// NewRetrievalService creates a new RetrievalService.
func NewRetrievalService(db *DB) *RetrievalService {
	return &RetrievalService{db: db}
}

// CreateRetrieval records a completed retrieval.
func (s *RetrievalService) CreateRetrieval(ctx context.Context, r *procdoc.Retrieval) error {
	if err := r.Validate(); err != nil {
		return err
	}

	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO retrievals (id, case_id, kind, description, url, file_path, strategy, page_count, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.CaseID, r.Kind, r.Description, r.URL, r.FilePath, r.Strategy, r.PageCount,
		r.ContentHash, formatTime(r.CreatedAt))

	return err
}

// FindRetrievals retrieves records matching the filter, most recent first.
func (s *RetrievalService) FindRetrievals(ctx context.Context, filter procdoc.RetrievalFilter) ([]*procdoc.Retrieval, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, case_id, kind, description, url, file_path, strategy, page_count, content_hash, created_at FROM retrievals WHERE 1=1")

	if filter.CaseID != nil {
		query.WriteString(" AND case_id = ?")
		args = append(args, *filter.CaseID)
	}
	if filter.Kind != nil {
		query.WriteString(" AND kind = ?")
		args = append(args, *filter.Kind)
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var retrievals []*procdoc.Retrieval
	for rows.Next() {
		var r procdoc.Retrieval
		var createdAt string

		if err := rows.Scan(&r.ID, &r.CaseID, &r.Kind, &r.Description, &r.URL, &r.FilePath,
			&r.Strategy, &r.PageCount, &r.ContentHash, &createdAt); err != nil {
			return nil, err
		}

		if r.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		retrievals = append(retrievals, &r)
	}

	return retrievals, rows.Err()
}
