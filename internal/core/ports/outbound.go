package ports

import (
	"context"
	"io"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// ClaimRepository persists claim rows.
type ClaimRepository interface {
	Create(ctx context.Context, claim *domain.Claim) error
	GetByID(ctx context.Context, id string) (*domain.Claim, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Claim, error)
	UpdateStatus(ctx context.Context, id string, status domain.ClaimStatus) error
}

// DocumentRepository persists document metadata and pipeline state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByClaim(ctx context.Context, claimID string) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
}

// ProcessedDocumentRepository persists the text transformation history.
// Each setter touches exactly one field; earlier fields are never cleared.
type ProcessedDocumentRepository interface {
	GetByDocumentID(ctx context.Context, documentID string) (*domain.ProcessedDocument, error)
	UpsertOCRText(ctx context.Context, documentID, text string) error
	SetAnonymizedText(ctx context.Context, documentID, text string) error
	SetCleanedText(ctx context.Context, documentID, text string) error
	SetReviewedText(ctx context.Context, documentID, text, reviewerID string) error
}

// ReportRepository persists generated reports. Reports are immutable.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	ListByClaim(ctx context.Context, claimID string) ([]domain.Report, error)
	CountByClaim(ctx context.Context, claimID string) (int, error)
}

// ContextRepository reads insurance context blocks and analysis types.
type ContextRepository interface {
	ListActive(ctx context.Context) ([]domain.InsuranceContext, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.InsuranceContext, error)
	GetAnalysisType(ctx context.Context, id string) (*domain.AnalysisType, error)
}

// RoleDirectory resolves an access token to a role-tagged session.
type RoleDirectory interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// BatchQueue publishes/consumes claim batch-processing jobs.
type BatchQueue interface {
	PublishClaimBatch(ctx context.Context, claimID string) error
	SubscribeClaimBatch(ctx context.Context, handler func(context.Context, string) error) error
}

// OCREngine extracts plain text from file bytes.
type OCREngine interface {
	ExtractText(ctx context.Context, content []byte, mimeType string) (string, error)
}

// Deidentifier replaces detected PII spans with typed placeholder tokens.
type Deidentifier interface {
	Deidentify(ctx context.Context, text string, infoTypes []string) (string, error)
}

// TextRefiner fixes grammar and spelling without changing meaning or
// placeholder tokens.
type TextRefiner interface {
	Refine(ctx context.Context, text string) (string, error)
}

// ReportEngine produces the five-field analysis object from a prompt pair.
type ReportEngine interface {
	GenerateReport(ctx context.Context, systemPrompt, userPrompt string) (domain.ReportContent, error)
}

// Embedder builds vectors for knowledge chunks and queries.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits knowledge content into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

// KnowledgeStore indexes and searches knowledge chunks semantically.
type KnowledgeStore interface {
	IndexChunks(ctx context.Context, entry *domain.KnowledgeEntry, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.KnowledgeFilter) ([]domain.KnowledgeHit, error)
}
