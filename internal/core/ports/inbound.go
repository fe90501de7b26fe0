package ports

import (
	"context"
	"io"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// ClaimService manages claim records.
type ClaimService interface {
	CreateClaim(ctx context.Context, claim *domain.Claim) (*domain.Claim, error)
	GetClaim(ctx context.Context, id string) (*domain.Claim, error)
	ListClaims(ctx context.Context, session *domain.Session) ([]domain.Claim, error)
}

// DocumentIngestor is the inbound contract for document upload.
type DocumentIngestor interface {
	Upload(ctx context.Context, claimID, filename, mimeType string, size int64, body io.Reader, uploadedBy string) (*domain.Document, error)
}

// PipelineService exposes the four per-document pipeline steps. Approve is
// the only human-gated transition.
type PipelineService interface {
	Extract(ctx context.Context, documentID string) (*domain.Document, error)
	Anonymize(ctx context.Context, documentID string) (*domain.Document, error)
	Clean(ctx context.Context, documentID string) (*domain.Document, error)
	Approve(ctx context.Context, documentID, reviewerID, finalText string) (*domain.Document, error)
}

// BatchProcessor runs the automated pipeline over a claim's uploaded
// documents, continuing past individual failures.
type BatchProcessor interface {
	ProcessClaim(ctx context.Context, claimID string) (*domain.BatchResult, error)
}

// ReportService generates per-document and claim-level reports.
type ReportService interface {
	GenerateDocumentReport(ctx context.Context, documentID, generatedBy string) (*domain.Report, error)
	GenerateClaimReport(ctx context.Context, claimID, generatedBy string, opts domain.ClaimReportOptions) (*domain.Report, error)
}

// WorkflowService derives claim-level aggregate state from documents.
type WorkflowService interface {
	Summary(ctx context.Context, claimID string) (*domain.WorkflowSummary, error)
	RecalculateClaimStatus(ctx context.Context, claimID string) (domain.ClaimStatus, error)
}

// KnowledgeService ingests and searches the knowledge base.
type KnowledgeService interface {
	AddEntry(ctx context.Context, entry *domain.KnowledgeEntry) (int, error)
	Search(ctx context.Context, query string, limit int, filter domain.KnowledgeFilter) ([]domain.KnowledgeHit, error)
}
