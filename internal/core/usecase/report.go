package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/core/ports"
)

// Reports generates per-document and claim-level analyses. A report is
// persisted only when the engine returned all five narrative fields; there
// is no partial report row.
type Reports struct {
	claims    ports.ClaimRepository
	docs      ports.DocumentRepository
	processed ports.ProcessedDocumentRepository
	reports   ports.ReportRepository
	contexts  ports.ContextRepository
	engine    ports.ReportEngine
	workflow  ports.WorkflowService
}

func NewReports(
	claims ports.ClaimRepository,
	docs ports.DocumentRepository,
	processed ports.ProcessedDocumentRepository,
	reports ports.ReportRepository,
	contexts ports.ContextRepository,
	engine ports.ReportEngine,
	workflow ports.WorkflowService,
) *Reports {
	return &Reports{
		claims:    claims,
		docs:      docs,
		processed: processed,
		reports:   reports,
		contexts:  contexts,
		engine:    engine,
		workflow:  workflow,
	}
}

// GenerateDocumentReport analyses one approved document.
func (uc *Reports) GenerateDocumentReport(ctx context.Context, documentID, generatedBy string) (*domain.Report, error) {
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	if !doc.Status.AtLeast(domain.StatusApproved) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"generate document report",
			fmt.Errorf("document status is %s, approval required", doc.Status),
		)
	}

	claim, err := uc.claims.GetByID(ctx, doc.ClaimID)
	if err != nil {
		return nil, fmt.Errorf("fetch claim by id: %w", err)
	}

	text, err := uc.approvedText(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	ctxBlocks, err := uc.contexts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list insurance contexts: %w", err)
	}

	content, err := uc.generate(ctx, documentReportSystemPrompt,
		buildDocumentReportPrompt(claim, doc, text, ctxBlocks))
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:          uuid.NewString(),
		ClaimID:     claim.ID,
		DocumentID:  doc.ID,
		Content:     content,
		GeneratedBy: generatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	if err := uc.markGenerated(ctx, doc); err != nil {
		return nil, err
	}
	uc.recalc(ctx, claim.ID)

	slog.Info("document_report_generated", "claim_id", claim.ID, "document_id", doc.ID, "report_id", report.ID)
	return report, nil
}

// GenerateClaimReport analyses all approved documents of a claim in one pass
// and anchors the resulting report to the first of them.
func (uc *Reports) GenerateClaimReport(ctx context.Context, claimID, generatedBy string, opts domain.ClaimReportOptions) (*domain.Report, error) {
	claim, err := uc.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("fetch claim by id: %w", err)
	}

	all, err := uc.docs.ListByClaim(ctx, claim.ID)
	if err != nil {
		return nil, fmt.Errorf("list claim documents: %w", err)
	}

	var approved []domain.Document
	for _, doc := range all {
		if doc.Status.AtLeast(domain.StatusApproved) {
			approved = append(approved, doc)
		}
	}
	if len(approved) == 0 {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"generate claim report",
			errors.New("claim has no approved documents"),
		)
	}

	texts := make([]string, len(approved))
	for i, doc := range approved {
		text, err := uc.approvedText(ctx, doc.ID)
		if err != nil {
			return nil, err
		}
		texts[i] = text
	}

	ctxBlocks, err := uc.contextBlocks(ctx, opts.ContextIDs)
	if err != nil {
		return nil, err
	}

	systemPrompt := claimReportSystemPrompt
	var analysisType *domain.AnalysisType
	if opts.AnalysisTypeID != "" {
		analysisType, err = uc.contexts.GetAnalysisType(ctx, opts.AnalysisTypeID)
		if err != nil {
			return nil, fmt.Errorf("fetch analysis type: %w", err)
		}
		if strings.TrimSpace(analysisType.SystemPrompt) != "" {
			systemPrompt = analysisType.SystemPrompt + "\n\n" + reportJSONContract
		}
	}

	content, err := uc.generate(ctx, systemPrompt,
		buildClaimReportPrompt(claim, approved, texts, ctxBlocks, opts.CustomInstruction))
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		ID:          uuid.NewString(),
		ClaimID:     claim.ID,
		DocumentID:  approved[0].ID,
		Content:     content,
		GeneratedBy: generatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if analysisType != nil {
		report.AnalysisTypeID = analysisType.ID
		report.AnalysisTypeName = analysisType.Name
	}
	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	for i := range approved {
		if err := uc.markGenerated(ctx, &approved[i]); err != nil {
			return nil, err
		}
	}
	uc.recalc(ctx, claim.ID)

	slog.Info("claim_report_generated",
		"claim_id", claim.ID, "report_id", report.ID, "documents", len(approved))
	return report, nil
}

// approvedText returns the reviewed text, falling back to the cleaned text
// when the reviewer approved without edits.
func (uc *Reports) approvedText(ctx context.Context, documentID string) (string, error) {
	proc, err := uc.processed.GetByDocumentID(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("load processed document: %w", err)
	}
	text := proc.ReviewedText
	if strings.TrimSpace(text) == "" {
		text = proc.CleanedText
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(
			domain.ErrReportGeneration,
			"load approved text",
			errors.New("document has no approved text"),
		)
	}
	return text, nil
}

func (uc *Reports) contextBlocks(ctx context.Context, ids []string) ([]domain.InsuranceContext, error) {
	if len(ids) > 0 {
		blocks, err := uc.contexts.ListByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list insurance contexts by ids: %w", err)
		}
		return blocks, nil
	}
	blocks, err := uc.contexts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list insurance contexts: %w", err)
	}
	return blocks, nil
}

func (uc *Reports) generate(ctx context.Context, systemPrompt, userPrompt string) (domain.ReportContent, error) {
	content, err := uc.engine.GenerateReport(ctx, systemPrompt, userPrompt)
	if err != nil {
		return domain.ReportContent{}, domain.WrapError(domain.ErrReportGeneration, "generate report", err)
	}
	if !content.Complete() {
		return domain.ReportContent{}, domain.WrapError(
			domain.ErrReportGeneration,
			"generate report",
			errors.New("engine response is missing required fields"),
		)
	}
	return content, nil
}

func (uc *Reports) markGenerated(ctx context.Context, doc *domain.Document) error {
	if doc.Status.AtLeast(domain.StatusReportGenerated) {
		return nil
	}
	if err := uc.docs.UpdateStatus(ctx, doc.ID, domain.StatusReportGenerated); err != nil {
		return fmt.Errorf("set status=%s: %w", domain.StatusReportGenerated, err)
	}
	doc.Status = domain.StatusReportGenerated
	return nil
}

// recalc is best effort: a generated report is valid even when the claim
// aggregate lags one request behind.
func (uc *Reports) recalc(ctx context.Context, claimID string) {
	if uc.workflow == nil {
		return
	}
	if _, err := uc.workflow.RecalculateClaimStatus(ctx, claimID); err != nil {
		slog.Error("claim_status_recalc_failed", "claim_id", claimID, "error", err)
	}
}
