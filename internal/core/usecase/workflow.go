package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/core/ports"
)

// Workflow derives claim-level aggregate state from the claim's documents
// and reports. The aggregate is always recomputed from rows, never stored
// incrementally.
type Workflow struct {
	claims  ports.ClaimRepository
	docs    ports.DocumentRepository
	reports ports.ReportRepository
}

func NewWorkflow(claims ports.ClaimRepository, docs ports.DocumentRepository, reports ports.ReportRepository) *Workflow {
	return &Workflow{claims: claims, docs: docs, reports: reports}
}

// Summary evaluates the workflow ladder for one claim.
func (uc *Workflow) Summary(ctx context.Context, claimID string) (*domain.WorkflowSummary, error) {
	claim, err := uc.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("fetch claim by id: %w", err)
	}

	docs, err := uc.docs.ListByClaim(ctx, claim.ID)
	if err != nil {
		return nil, fmt.Errorf("list claim documents: %w", err)
	}

	reportCount, err := uc.reports.CountByClaim(ctx, claim.ID)
	if err != nil {
		return nil, fmt.Errorf("count claim reports: %w", err)
	}

	statuses := make([]domain.DocumentStatus, len(docs))
	for i, doc := range docs {
		statuses[i] = doc.Status
	}

	summary := domain.DeriveWorkflow(statuses, reportCount)
	return &summary, nil
}

// RecalculateClaimStatus maps the document set onto the coarse claim status
// and persists it when it changed.
func (uc *Workflow) RecalculateClaimStatus(ctx context.Context, claimID string) (domain.ClaimStatus, error) {
	claim, err := uc.claims.GetByID(ctx, claimID)
	if err != nil {
		return "", fmt.Errorf("fetch claim by id: %w", err)
	}

	// Rejection is a handler decision, not a document-derived state.
	if claim.Status == domain.ClaimStatusRejected {
		return claim.Status, nil
	}

	docs, err := uc.docs.ListByClaim(ctx, claim.ID)
	if err != nil {
		return "", fmt.Errorf("list claim documents: %w", err)
	}

	next := deriveClaimStatus(docs)
	if next == claim.Status {
		return next, nil
	}

	if err := uc.claims.UpdateStatus(ctx, claim.ID, next); err != nil {
		return "", fmt.Errorf("set claim status=%s: %w", next, err)
	}
	slog.Info("claim_status_changed", "claim_id", claim.ID, "from", claim.Status, "to", next)
	return next, nil
}

func deriveClaimStatus(docs []domain.Document) domain.ClaimStatus {
	if len(docs) == 0 {
		return domain.ClaimStatusNew
	}
	generated := 0
	started := 0
	for _, doc := range docs {
		if doc.Status.AtLeast(domain.StatusReportGenerated) {
			generated++
		}
		if doc.Status != domain.StatusUploaded {
			started++
		}
	}
	switch {
	case generated == len(docs):
		return domain.ClaimStatusCompleted
	case started > 0:
		return domain.ClaimStatusInProgress
	default:
		return domain.ClaimStatusNew
	}
}
