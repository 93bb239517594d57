package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procdoc/procdoc"
)

// Compile-time interface verification.
var _ procdoc.CaseService = (*CaseService)(nil)

// CaseService implements procdoc.CaseService using SQLite.
type CaseService struct {
	db *DB
}

// NewCaseService creates a new CaseService.
func NewCaseService(db *DB) *CaseService {
	return &CaseService{db: db}
}

// UpsertCase creates the record or refreshes the existing one for the same
// protocol number. Protocols are matched on their digits, so formatted and
// bare spellings address the same row. Fields the incoming record leaves
// empty keep their archived values, so a search refresh cannot erase a
// previously archived movement scrape.
func (s *CaseService) UpsertCase(ctx context.Context, rec *procdoc.CaseRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	key := procdoc.NormalizeProtocol(rec.ProtocolNumber)
	if key == "" {
		return procdoc.Errorf(procdoc.EINVALID, "case protocol number required")
	}

	existing, err := s.findByKey(ctx, key)
	if err != nil && procdoc.ErrorCode(err) != procdoc.ENOTFOUND {
		return err
	}

	now := time.Now().UTC()

	if existing == nil {
		rec.ID = uuid.New().String()
		rec.CreatedAt = now
		rec.UpdatedAt = now

		parties, err := encodeParties(rec.Details.Parties)
		if err != nil {
			return err
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO cases (id, protocol_number, protocol_key, case_page_url, case_number, class, subject, forum, court, judge, parties, movements_text, content_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.ProtocolNumber, key, rec.CasePageURL, rec.Details.CaseNumber, rec.Details.Class,
			rec.Details.Subject, rec.Details.Forum, rec.Details.Court, rec.Details.Judge, parties,
			rec.MovementsText, rec.ContentHash, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt))

		return err
	}

	mergeCase(rec, existing)
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = now

	parties, err := encodeParties(rec.Details.Parties)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE cases
		SET protocol_number = ?, case_page_url = ?, case_number = ?, class = ?, subject = ?, forum = ?, court = ?, judge = ?, parties = ?, movements_text = ?, content_hash = ?, updated_at = ?
		WHERE id = ?
	`, rec.ProtocolNumber, rec.CasePageURL, rec.Details.CaseNumber, rec.Details.Class,
		rec.Details.Subject, rec.Details.Forum, rec.Details.Court, rec.Details.Judge, parties,
		rec.MovementsText, rec.ContentHash, formatTime(rec.UpdatedAt), rec.ID)

	return err
}

// mergeCase fills empty fields of rec from the archived record. The
// movement text and its hash travel together.
func mergeCase(rec, existing *procdoc.CaseRecord) {
	if rec.CasePageURL == "" {
		rec.CasePageURL = existing.CasePageURL
	}
	if detailsEmpty(rec.Details) {
		rec.Details = existing.Details
	}
	if rec.MovementsText == "" {
		rec.MovementsText = existing.MovementsText
		if rec.ContentHash == "" {
			rec.ContentHash = existing.ContentHash
		}
	}
}

func detailsEmpty(d procdoc.CaseDetails) bool {
	return d.CaseNumber == "" && d.Class == "" && d.Subject == "" &&
		d.Forum == "" && d.Court == "" && d.Judge == "" && len(d.Parties) == 0
}

// FindCaseByProtocol retrieves a case by its protocol number, in any
// spelling that normalizes to the same digits.
func (s *CaseService) FindCaseByProtocol(ctx context.Context, protocolNumber string) (*procdoc.CaseRecord, error) {
	key := procdoc.NormalizeProtocol(protocolNumber)
	if key == "" {
		return nil, procdoc.Errorf(procdoc.EINVALID, "protocol number required")
	}
	return s.findByKey(ctx, key)
}

// findByKey retrieves a case by its normalized protocol digits.
func (s *CaseService) findByKey(ctx context.Context, key string) (*procdoc.CaseRecord, error) {
	var rec procdoc.CaseRecord
	var parties, createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, protocol_number, case_page_url, case_number, class, subject, forum, court, judge, parties, movements_text, content_hash, created_at, updated_at
		FROM cases
		WHERE protocol_key = ?
	`, key).Scan(&rec.ID, &rec.ProtocolNumber, &rec.CasePageURL, &rec.Details.CaseNumber, &rec.Details.Class,
		&rec.Details.Subject, &rec.Details.Forum, &rec.Details.Court, &rec.Details.Judge, &parties,
		&rec.MovementsText, &rec.ContentHash, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, procdoc.Errorf(procdoc.ENOTFOUND, "case not found")
	}
	if err != nil {
		return nil, err
	}

	if rec.Details.Parties, err = decodeParties(parties); err != nil {
		return nil, err
	}
	if rec.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &rec, nil
}

// FindCases retrieves cases matching the filter, most recently refreshed
// first.
func (s *CaseService) FindCases(ctx context.Context, filter procdoc.CaseFilter) ([]*procdoc.CaseRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, protocol_number, case_page_url, case_number, class, subject, forum, court, judge, parties, movements_text, content_hash, created_at, updated_at FROM cases WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.ProtocolNumber != nil {
		query.WriteString(" AND protocol_key = ?")
		args = append(args, procdoc.NormalizeProtocol(*filter.ProtocolNumber))
	}

	query.WriteString(" ORDER BY updated_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*procdoc.CaseRecord
	for rows.Next() {
		var rec procdoc.CaseRecord
		var parties, createdAt, updatedAt string

		if err := rows.Scan(&rec.ID, &rec.ProtocolNumber, &rec.CasePageURL, &rec.Details.CaseNumber, &rec.Details.Class,
			&rec.Details.Subject, &rec.Details.Forum, &rec.Details.Court, &rec.Details.Judge, &parties,
			&rec.MovementsText, &rec.ContentHash, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		if rec.Details.Parties, err = decodeParties(parties); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if rec.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		recs = append(recs, &rec)
	}

	return recs, rows.Err()
}

// DeleteCase permanently removes a case. Its retrievals cascade.
func (s *CaseService) DeleteCase(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM cases WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return procdoc.Errorf(procdoc.ENOTFOUND, "case not found")
	}

	return nil
}

// encodeParties renders the parties list as a JSON array for storage.
func encodeParties(parties []string) (string, error) {
	if len(parties) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(parties)
	if err != nil {
		return "", fmt.Errorf("failed to encode parties: %w", err)
	}
	return string(b), nil
}

func decodeParties(value string) ([]string, error) {
	if value == "" || value == "[]" {
		return nil, nil
	}
	var parties []string
	if err := json.Unmarshal([]byte(value), &parties); err != nil {
		return nil, fmt.Errorf("failed to parse parties: %w", err)
	}
	return parties, nil
}
