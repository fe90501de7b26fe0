package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// ProcessedDocumentRepository stores the text transformation history. Each
// setter writes exactly one column so a later step never clears an earlier
// one.
type ProcessedDocumentRepository struct {
	db *sql.DB
}

func NewProcessedDocumentRepository(db *sql.DB) *ProcessedDocumentRepository {
	return &ProcessedDocumentRepository{db: db}
}

func (r *ProcessedDocumentRepository) GetByDocumentID(ctx context.Context, documentID string) (*domain.ProcessedDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT document_id, ocr_text, anonymized_text, cleaned_text, reviewed_text, reviewed_by, reviewed_at, created_at, updated_at
FROM processed_documents
WHERE document_id = $1
`, documentID)

	var proc domain.ProcessedDocument
	var reviewedAt sql.NullTime
	err := row.Scan(
		&proc.DocumentID, &proc.OCRText, &proc.AnonymizedText, &proc.CleanedText,
		&proc.ReviewedText, &proc.ReviewedBy, &reviewedAt, &proc.CreatedAt, &proc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get processed document", fmt.Errorf("document %s", documentID))
		}
		return nil, fmt.Errorf("scan processed document: %w", err)
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		proc.ReviewedAt = &t
	}
	return &proc, nil
}

// UpsertOCRText creates the row on first extraction and overwrites the raw
// text on re-extraction.
func (r *ProcessedDocumentRepository) UpsertOCRText(ctx context.Context, documentID, text string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO processed_documents (document_id, ocr_text, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (document_id) DO UPDATE SET ocr_text = EXCLUDED.ocr_text, updated_at = EXCLUDED.updated_at
`, documentID, text, now)
	if err != nil {
		return fmt.Errorf("upsert ocr text: %w", err)
	}
	return nil
}

func (r *ProcessedDocumentRepository) SetAnonymizedText(ctx context.Context, documentID, text string) error {
	return r.setColumn(ctx, "anonymized_text", documentID, text)
}

func (r *ProcessedDocumentRepository) SetCleanedText(ctx context.Context, documentID, text string) error {
	return r.setColumn(ctx, "cleaned_text", documentID, text)
}

func (r *ProcessedDocumentRepository) SetReviewedText(ctx context.Context, documentID, text, reviewerID string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE processed_documents
SET reviewed_text = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4
WHERE document_id = $1
`, documentID, text, reviewerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set reviewed text: %w", err)
	}
	return requireRow(res, "set reviewed text", documentID)
}

func (r *ProcessedDocumentRepository) setColumn(ctx context.Context, column, documentID, text string) error {
	// column comes from the two fixed call sites above, never from input.
	query := fmt.Sprintf(`
UPDATE processed_documents
SET %s = $2, updated_at = $3
WHERE document_id = $1
`, column)
	res, err := r.db.ExecContext(ctx, query, documentID, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return requireRow(res, "set "+column, documentID)
}

func requireRow(res sql.Result, op, documentID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("document %s", documentID))
	}
	return nil
}
