package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mvarga/claimsdesk/internal/config"
	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/core/ports"
	"github.com/mvarga/claimsdesk/internal/observability/metrics"
)

// ReportExporter renders a claim's reports into a downloadable workbook.
type ReportExporter interface {
	Export(w io.Writer, claim *domain.Claim, reports []domain.Report) error
}

// Deps collects everything the router dispatches to.
type Deps struct {
	Claims    ports.ClaimService
	Ingest    ports.DocumentIngestor
	Pipeline  ports.PipelineService
	Reports   ports.ReportService
	Workflow  ports.WorkflowService
	Knowledge ports.KnowledgeService
	Queue     ports.BatchQueue
	Documents ports.DocumentRepository
	ReportLog ports.ReportRepository
	Roles     ports.RoleDirectory
	Exporter  ReportExporter
	Metrics   *metrics.HTTPServerMetrics
}

type Router struct {
	cfg config.Config

	claims    ports.ClaimService
	ingest    ports.DocumentIngestor
	pipeline  ports.PipelineService
	reports   ports.ReportService
	workflow  ports.WorkflowService
	knowledge ports.KnowledgeService
	queue     ports.BatchQueue
	documents ports.DocumentRepository
	reportLog ports.ReportRepository
	roles     ports.RoleDirectory
	exporter  ReportExporter
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(cfg config.Config, deps Deps) *Router {
	return &Router{
		cfg:       cfg,
		claims:    deps.Claims,
		ingest:    deps.Ingest,
		pipeline:  deps.Pipeline,
		reports:   deps.Reports,
		workflow:  deps.Workflow,
		knowledge: deps.Knowledge,
		queue:     deps.Queue,
		documents: deps.Documents,
		reportLog: deps.ReportLog,
		roles:     deps.Roles,
		exporter:  deps.Exporter,
		metrics:   deps.Metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/claims", rt.createClaim)
	api.HandleFunc("GET /v1/claims", rt.listClaims)
	api.HandleFunc("GET /v1/claims/{id}", rt.getClaim)
	api.HandleFunc("GET /v1/claims/{id}/workflow", rt.claimWorkflow)
	api.HandleFunc("POST /v1/claims/{id}/documents", rt.uploadDocument)
	api.HandleFunc("POST /v1/claims/{id}/process", rt.processClaim)
	api.HandleFunc("POST /v1/claims/{id}/report", rt.generateClaimReport)
	api.HandleFunc("GET /v1/claims/{id}/reports", rt.listClaimReports)
	api.HandleFunc("GET /v1/claims/{id}/reports/export", rt.exportClaimReports)

	api.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	api.HandleFunc("POST /v1/documents/{id}/extract", rt.runStep(rt.pipeline.Extract))
	api.HandleFunc("POST /v1/documents/{id}/anonymize", rt.runStep(rt.pipeline.Anonymize))
	api.HandleFunc("POST /v1/documents/{id}/clean", rt.runStep(rt.pipeline.Clean))
	api.HandleFunc("POST /v1/documents/{id}/approve", rt.approveDocument)
	api.HandleFunc("POST /v1/documents/{id}/report", rt.generateDocumentReport)

	api.HandleFunc("POST /v1/knowledge", rt.addKnowledgeEntry)
	api.HandleFunc("POST /v1/knowledge/search", rt.searchKnowledge)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("/v1/", rt.authMiddleware(api))

	handler := rateLimitMiddleware(mux, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "30")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
