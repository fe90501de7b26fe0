package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mvarga/claimsdesk/internal/config"
	"github.com/mvarga/claimsdesk/internal/core/domain"
)

func TestGenerateDocumentReport(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/documents/d1/report", nil), "tok-handler")
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if f.reports.gotBy != "u1" {
		t.Fatalf("gotBy = %q", f.reports.gotBy)
	}
}

func TestGenerateDocumentReportNotApprovedMapsTo400(t *testing.T) {
	f := newRouterFixture(config.Config{})
	f.reports.err = domain.WrapError(domain.ErrInvalidInput, "document report",
		errors.New("document is not approved"))

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/documents/d1/report", nil), "tok-handler")
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGenerateClaimReportPassesOptions(t *testing.T) {
	f := newRouterFixture(config.Config{})

	payload, _ := json.Marshal(map[string]any{
		"context_ids":        []string{"ctx-1", "ctx-2"},
		"custom_instruction": "zameraj sa na výluky",
		"analysis_type_id":   "at-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/claims/c1/report", bytes.NewReader(payload))
	res := f.do(req, "tok-handler")

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	opts := f.reports.gotOpts
	if len(opts.ContextIDs) != 2 || opts.CustomInstruction != "zameraj sa na výluky" || opts.AnalysisTypeID != "at-1" {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestGenerateClaimReportEmptyBodyAllowed(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/claims/c1/report", nil), "tok-handler")
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
}

func TestGenerateClaimReportEngineFailureMapsTo502(t *testing.T) {
	f := newRouterFixture(config.Config{})
	f.reports.err = domain.WrapError(domain.ErrReportGeneration, "claim report",
		errors.New("missing field recommendation"))

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/claims/c1/report", nil), "tok-handler")
	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
}

func TestListClaimReports(t *testing.T) {
	f := newRouterFixture(config.Config{})
	f.reportLog.reports = []domain.Report{
		{ID: "r1", ClaimID: "c1", CreatedAt: time.Now()},
		{ID: "r2", ClaimID: "c1"},
	}

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims/c1/reports", nil), "tok-handler")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		Reports []domain.Report `json:"reports"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Reports) != 2 {
		t.Fatalf("reports = %+v", body.Reports)
	}
}

func TestExportClaimReportsSetsDownloadHeaders(t *testing.T) {
	f := newRouterFixture(config.Config{})
	f.reportLog.reports = []domain.Report{{ID: "r1", ClaimID: "c1"}}

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims/c1/reports/export", nil), "tok-handler")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if ct := res.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := res.Header().Get("Content-Disposition"); !strings.Contains(cd, "reports_PU-2026-001.xlsx") {
		t.Fatalf("content disposition = %q", cd)
	}
	if f.exporter.gotClaim == nil || len(f.exporter.gotReports) != 1 {
		t.Fatalf("exporter call = %+v", f.exporter)
	}
}

func TestExportFailureStaysJSON(t *testing.T) {
	f := newRouterFixture(config.Config{})
	f.exporter.err = errors.New("workbook write failed")

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims/c1/reports/export", nil), "tok-handler")
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", res.Code)
	}
	if ct := res.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}
