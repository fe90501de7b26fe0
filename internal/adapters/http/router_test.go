package httpadapter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/mvarga/claimsdesk/internal/config"
	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// Shared fakes for the router tests. Each test file exercises one slice of
// the API against these.

type claimSvcFake struct {
	claims  map[string]*domain.Claim
	created *domain.Claim
	listErr error
}

func (f *claimSvcFake) CreateClaim(_ context.Context, claim *domain.Claim) (*domain.Claim, error) {
	if claim.ClaimNumber == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create claim", errors.New("claim number is required"))
	}
	claim.ID = "c-new"
	claim.Status = domain.ClaimStatusNew
	f.created = claim
	return claim, nil
}

func (f *claimSvcFake) GetClaim(_ context.Context, id string) (*domain.Claim, error) {
	claim, ok := f.claims[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrClaimNotFound, "fetch claim", errors.New("id="+id))
	}
	return claim, nil
}

func (f *claimSvcFake) ListClaims(_ context.Context, session *domain.Session) ([]domain.Claim, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Claim
	for _, claim := range f.claims {
		if session.IsAdmin() || claim.CreatedBy == session.UserID {
			out = append(out, *claim)
		}
	}
	return out, nil
}

type ingestFake struct {
	gotClaimID string
	gotName    string
	gotBy      string
	err        error
}

func (f *ingestFake) Upload(_ context.Context, claimID, filename, mimeType string, size int64, body io.Reader, uploadedBy string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotClaimID = claimID
	f.gotName = filename
	f.gotBy = uploadedBy
	return &domain.Document{ID: "d-new", ClaimID: claimID, FileName: filename, Status: domain.StatusUploaded}, nil
}

type pipelineSvcFake struct {
	stepErr  map[string]error
	lastStep string
	reviewer string
	text     string
}

func (f *pipelineSvcFake) step(name, documentID string) (*domain.Document, error) {
	f.lastStep = name
	if err := f.stepErr[name]; err != nil {
		return nil, err
	}
	return &domain.Document{ID: documentID}, nil
}

func (f *pipelineSvcFake) Extract(_ context.Context, documentID string) (*domain.Document, error) {
	return f.step("extract", documentID)
}

func (f *pipelineSvcFake) Anonymize(_ context.Context, documentID string) (*domain.Document, error) {
	return f.step("anonymize", documentID)
}

func (f *pipelineSvcFake) Clean(_ context.Context, documentID string) (*domain.Document, error) {
	return f.step("clean", documentID)
}

func (f *pipelineSvcFake) Approve(_ context.Context, documentID, reviewerID, finalText string) (*domain.Document, error) {
	f.reviewer = reviewerID
	f.text = finalText
	return f.step("approve", documentID)
}

type reportSvcFake struct {
	gotOpts domain.ClaimReportOptions
	gotBy   string
	err     error
}

func (f *reportSvcFake) GenerateDocumentReport(_ context.Context, documentID, generatedBy string) (*domain.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotBy = generatedBy
	return &domain.Report{ID: "r1", DocumentID: documentID, GeneratedBy: generatedBy}, nil
}

func (f *reportSvcFake) GenerateClaimReport(_ context.Context, claimID, generatedBy string, opts domain.ClaimReportOptions) (*domain.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotOpts = opts
	f.gotBy = generatedBy
	return &domain.Report{ID: "r-final", ClaimID: claimID, GeneratedBy: generatedBy}, nil
}

type workflowSvcFake struct {
	summary domain.WorkflowSummary
}

func (f *workflowSvcFake) Summary(_ context.Context, claimID string) (*domain.WorkflowSummary, error) {
	s := f.summary
	return &s, nil
}

func (f *workflowSvcFake) RecalculateClaimStatus(_ context.Context, claimID string) (domain.ClaimStatus, error) {
	return domain.ClaimStatusInProgress, nil
}

type knowledgeSvcFake struct {
	gotEntry  *domain.KnowledgeEntry
	gotQuery  string
	gotFilter domain.KnowledgeFilter
	hits      []domain.KnowledgeHit
	err       error
}

func (f *knowledgeSvcFake) AddEntry(_ context.Context, entry *domain.KnowledgeEntry) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	entry.ID = "k1"
	f.gotEntry = entry
	return 3, nil
}

func (f *knowledgeSvcFake) Search(_ context.Context, query string, limit int, filter domain.KnowledgeFilter) ([]domain.KnowledgeHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotQuery = query
	f.gotFilter = filter
	return f.hits, nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishClaimBatch(_ context.Context, claimID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, claimID)
	return nil
}

func (f *queueFake) SubscribeClaimBatch(ctx context.Context, _ func(context.Context, string) error) error {
	<-ctx.Done()
	return ctx.Err()
}

type docRepoFake struct {
	docs map[string]*domain.Document
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error { return nil }

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "fetch document", errors.New("id="+id))
	}
	return doc, nil
}

func (f *docRepoFake) ListByClaim(_ context.Context, claimID string) ([]domain.Document, error) {
	return nil, nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	return nil
}

type reportLogFake struct {
	reports []domain.Report
	err     error
}

func (f *reportLogFake) Create(_ context.Context, report *domain.Report) error { return nil }

func (f *reportLogFake) ListByClaim(_ context.Context, claimID string) ([]domain.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reports, nil
}

func (f *reportLogFake) CountByClaim(_ context.Context, claimID string) (int, error) {
	return len(f.reports), nil
}

type rolesFake struct {
	sessions map[string]*domain.Session
}

func (f *rolesFake) Resolve(_ context.Context, token string) (*domain.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve token", errors.New("unknown token"))
	}
	return session, nil
}

type exporterFake struct {
	gotClaim   *domain.Claim
	gotReports []domain.Report
	err        error
}

func (f *exporterFake) Export(w io.Writer, claim *domain.Claim, reports []domain.Report) error {
	if f.err != nil {
		return f.err
	}
	f.gotClaim = claim
	f.gotReports = reports
	_, _ = w.Write([]byte("PK-workbook"))
	return nil
}

type routerFixture struct {
	claims    *claimSvcFake
	ingest    *ingestFake
	pipeline  *pipelineSvcFake
	reports   *reportSvcFake
	workflow  *workflowSvcFake
	knowledge *knowledgeSvcFake
	queue     *queueFake
	docs      *docRepoFake
	reportLog *reportLogFake
	exporter  *exporterFake

	handler http.Handler
}

func newRouterFixture(cfg config.Config) *routerFixture {
	f := &routerFixture{
		claims: &claimSvcFake{claims: map[string]*domain.Claim{
			"c1": {ID: "c1", ClaimNumber: "PU-2026-001", ClientName: "Ján Novák", ClaimType: "majetok", CreatedBy: "u1", CreatedAt: time.Now()},
			"c2": {ID: "c2", ClaimNumber: "PU-2026-002", ClientName: "Eva Malá", ClaimType: "auto", CreatedBy: "u2"},
		}},
		ingest:   &ingestFake{},
		pipeline: &pipelineSvcFake{stepErr: map[string]error{}},
		reports:  &reportSvcFake{},
		workflow: &workflowSvcFake{summary: domain.WorkflowSummary{Status: domain.WorkflowProcessing, Progress: 50}},
		knowledge: &knowledgeSvcFake{hits: []domain.KnowledgeHit{
			{EntryID: "k1", Title: "VPP", Text: "výluka povodeň", Score: 0.9},
		}},
		queue: &queueFake{},
		docs: &docRepoFake{docs: map[string]*domain.Document{
			"d1": {ID: "d1", ClaimID: "c1", FileName: "zmluva.pdf", Status: domain.StatusUploaded},
			"d2": {ID: "d2", ClaimID: "c2", FileName: "faktura.pdf", Status: domain.StatusUploaded},
		}},
		reportLog: &reportLogFake{},
		exporter:  &exporterFake{},
	}

	roles := &rolesFake{sessions: map[string]*domain.Session{
		"tok-handler": {UserID: "u1", Role: domain.RoleHandler},
		"tok-admin":   {UserID: "boss", Role: domain.RoleAdmin},
	}}

	f.handler = NewRouter(cfg, Deps{
		Claims:    f.claims,
		Ingest:    f.ingest,
		Pipeline:  f.pipeline,
		Reports:   f.reports,
		Workflow:  f.workflow,
		Knowledge: f.knowledge,
		Queue:     f.queue,
		Documents: f.docs,
		ReportLog: f.reportLog,
		Roles:     roles,
		Exporter:  f.exporter,
	}).Handler()
	return f
}

func (f *routerFixture) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)
	return res
}
