package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/core/ports"
)

// Batch runs the automated pipeline prefix (extract, anonymize, clean) over
// every uploaded document of a claim. One document failing never aborts the
// run; its error is recorded and the loop moves on.
type Batch struct {
	claims   ports.ClaimRepository
	docs     ports.DocumentRepository
	pipeline ports.PipelineService
	workflow ports.WorkflowService
}

func NewBatch(
	claims ports.ClaimRepository,
	docs ports.DocumentRepository,
	pipeline ports.PipelineService,
	workflow ports.WorkflowService,
) *Batch {
	return &Batch{
		claims:   claims,
		docs:     docs,
		pipeline: pipeline,
		workflow: workflow,
	}
}

// ProcessClaim picks up the claim's documents that have not entered the
// pipeline yet and drives each one to ready_for_review.
func (uc *Batch) ProcessClaim(ctx context.Context, claimID string) (*domain.BatchResult, error) {
	claim, err := uc.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("fetch claim by id: %w", err)
	}

	all, err := uc.docs.ListByClaim(ctx, claim.ID)
	if err != nil {
		return nil, fmt.Errorf("list claim documents: %w", err)
	}

	var pending []domain.Document
	for _, doc := range all {
		if doc.Status == domain.StatusUploaded {
			pending = append(pending, doc)
		}
	}

	result := &domain.BatchResult{ClaimID: claim.ID, Total: len(pending)}
	if len(pending) == 0 {
		slog.Info("batch_nothing_to_process", "claim_id", claim.ID, "documents", len(all))
		return result, nil
	}

	for _, doc := range pending {
		item := domain.BatchItem{DocumentID: doc.ID, FileName: doc.FileName}
		if step, err := uc.processOne(ctx, doc.ID); err != nil {
			item.Step = step
			item.Error = err.Error()
			slog.Error("batch_document_failed",
				"claim_id", claim.ID, "document_id", doc.ID, "step", step, "error", err)
		} else {
			result.Processed++
		}
		result.Items = append(result.Items, item)
	}

	if _, err := uc.workflow.RecalculateClaimStatus(ctx, claim.ID); err != nil {
		slog.Error("batch_claim_status_recalc_failed", "claim_id", claim.ID, "error", err)
	}

	slog.Info("batch_finished",
		"claim_id", claim.ID, "total", result.Total, "processed", result.Processed)
	return result, nil
}

// processOne runs the automated steps in order and reports which one failed.
func (uc *Batch) processOne(ctx context.Context, documentID string) (string, error) {
	if _, err := uc.pipeline.Extract(ctx, documentID); err != nil {
		return "extract", err
	}
	if _, err := uc.pipeline.Anonymize(ctx, documentID); err != nil {
		return "anonymize", err
	}
	if _, err := uc.pipeline.Clean(ctx, documentID); err != nil {
		return "clean", err
	}
	return "", nil
}
