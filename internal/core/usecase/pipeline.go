package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/core/ports"
)

// piiInfoTypes is the fixed detection list sent to the de-identification
// engine. Matched spans are replaced with typed placeholder tokens.
var piiInfoTypes = []string{
	"PERSON_NAME",
	"EMAIL_ADDRESS",
	"PHONE_NUMBER",
	"CREDIT_CARD_NUMBER",
	"IBAN_CODE",
	"STREET_ADDRESS",
	"DATE_OF_BIRTH",
	"PASSPORT",
	"NATIONAL_ID",
}

// Pipeline implements the four per-document processing steps. Every step
// reads one persisted field, calls one external engine, writes one persisted
// field and advances the document status. A failed step commits nothing.
type Pipeline struct {
	docs      ports.DocumentRepository
	processed ports.ProcessedDocumentRepository
	storage   ports.ObjectStorage
	ocr       ports.OCREngine
	deid      ports.Deidentifier
	refiner   ports.TextRefiner
}

func NewPipeline(
	docs ports.DocumentRepository,
	processed ports.ProcessedDocumentRepository,
	storage ports.ObjectStorage,
	ocr ports.OCREngine,
	deid ports.Deidentifier,
	refiner ports.TextRefiner,
) *Pipeline {
	return &Pipeline{
		docs:      docs,
		processed: processed,
		storage:   storage,
		ocr:       ocr,
		deid:      deid,
		refiner:   refiner,
	}
}

// Extract downloads the stored file, runs OCR and stores the raw text.
func (uc *Pipeline) Extract(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	reader, err := uc.storage.Open(ctx, doc.FilePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "download stored file", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "read stored file", err)
	}

	text, err := uc.ocr.ExtractText(ctx, raw, doc.MimeType)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "extract text", err)
	}

	if err := uc.processed.UpsertOCRText(ctx, doc.ID, text); err != nil {
		return nil, fmt.Errorf("save ocr text: %w", err)
	}

	if err := uc.advance(ctx, doc, domain.StatusOCRComplete); err != nil {
		return nil, err
	}

	slog.Info("document_extracted", "document_id", doc.ID, "chars", len(text))
	return doc, nil
}

// Anonymize replaces detected PII in the raw text with typed placeholders.
func (uc *Pipeline) Anonymize(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	proc, err := uc.processed.GetByDocumentID(ctx, doc.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrAnonymization, "load processed document", err)
	}
	if strings.TrimSpace(proc.OCRText) == "" {
		return nil, domain.WrapError(domain.ErrAnonymization, "anonymize document", errors.New("no ocr text available"))
	}

	redacted, err := uc.deid.Deidentify(ctx, proc.OCRText, piiInfoTypes)
	if err != nil {
		return nil, domain.WrapError(domain.ErrAnonymization, "deidentify text", err)
	}

	if err := uc.processed.SetAnonymizedText(ctx, doc.ID, redacted); err != nil {
		return nil, fmt.Errorf("save anonymized text: %w", err)
	}

	if err := uc.advance(ctx, doc, domain.StatusAnonymized); err != nil {
		return nil, err
	}

	slog.Info("document_anonymized", "document_id", doc.ID)
	return doc, nil
}

// Clean fixes grammar in the anonymized text. Placeholder tokens must
// survive verbatim; the refiner's instruction enforces that. An approved
// document is never regressed back to ready_for_review.
func (uc *Pipeline) Clean(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	proc, err := uc.processed.GetByDocumentID(ctx, doc.ID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCleaning, "load processed document", err)
	}
	if strings.TrimSpace(proc.AnonymizedText) == "" {
		return nil, domain.WrapError(domain.ErrCleaning, "clean document", errors.New("no anonymized text available"))
	}

	cleaned, err := uc.refiner.Refine(ctx, proc.AnonymizedText)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCleaning, "refine text", err)
	}
	if strings.TrimSpace(cleaned) == "" {
		return nil, domain.WrapError(domain.ErrCleaning, "refine text", errors.New("engine returned empty text"))
	}

	if err := uc.processed.SetCleanedText(ctx, doc.ID, cleaned); err != nil {
		return nil, fmt.Errorf("save cleaned text: %w", err)
	}

	if doc.Status.AtLeast(domain.StatusApproved) {
		slog.Info("document_cleaned_no_status_change", "document_id", doc.ID, "status", doc.Status)
		return doc, nil
	}

	if err := uc.advance(ctx, doc, domain.StatusReadyForReview); err != nil {
		return nil, err
	}

	slog.Info("document_cleaned", "document_id", doc.ID)
	return doc, nil
}

// Approve records the reviewed text. The only human-gated transition.
func (uc *Pipeline) Approve(ctx context.Context, documentID, reviewerID, finalText string) (*domain.Document, error) {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Status != domain.StatusReadyForReview {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"approve document",
			fmt.Errorf("status is %s, want %s", doc.Status, domain.StatusReadyForReview),
		)
	}
	if strings.TrimSpace(finalText) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "approve document", errors.New("final text is empty"))
	}
	if reviewerID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "approve document", errors.New("reviewer id is required"))
	}

	if err := uc.processed.SetReviewedText(ctx, doc.ID, finalText, reviewerID); err != nil {
		return nil, fmt.Errorf("save reviewed text: %w", err)
	}

	if err := uc.advance(ctx, doc, domain.StatusApproved); err != nil {
		return nil, err
	}

	slog.Info("document_approved", "document_id", doc.ID, "reviewer", reviewerID)
	return doc, nil
}

func (uc *Pipeline) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

// advance moves the document forward. A document already at or past the
// target keeps its status: transitions are monotonic.
func (uc *Pipeline) advance(ctx context.Context, doc *domain.Document, target domain.DocumentStatus) error {
	if doc.Status.AtLeast(target) {
		return nil
	}
	if err := uc.docs.UpdateStatus(ctx, doc.ID, target); err != nil {
		return fmt.Errorf("set status=%s: %w", target, err)
	}
	doc.Status = target
	return nil
}
