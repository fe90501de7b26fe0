package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvarga/claimsdesk/internal/config"
	"github.com/mvarga/claimsdesk/internal/core/domain"
)

func multipartUpload(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadDocument(t *testing.T) {
	f := newRouterFixture(config.Config{})

	req := multipartUpload(t, "/v1/claims/c1/documents", "zmluva.pdf", "%PDF-1.4")
	res := f.do(req, "tok-handler")

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if f.ingest.gotClaimID != "c1" || f.ingest.gotName != "zmluva.pdf" || f.ingest.gotBy != "u1" {
		t.Fatalf("ingest call = %+v", f.ingest)
	}
}

func TestUploadWithoutFileReturns400(t *testing.T) {
	f := newRouterFixture(config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/v1/claims/c1/documents", nil)
	res := f.do(req, "tok-handler")

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestStepTriggerRunsPipeline(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/documents/d1/extract", nil), "tok-handler")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if f.pipeline.lastStep != "extract" {
		t.Fatalf("lastStep = %q", f.pipeline.lastStep)
	}
}

func TestExtractEngineFailureMapsTo502(t *testing.T) {
	f := newRouterFixture(config.Config{})
	f.pipeline.stepErr["extract"] = domain.WrapError(domain.ErrExtraction, "extract", errors.New("processor unavailable"))

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/documents/d1/extract", nil), "tok-handler")
	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
}

func TestCleanRateLimitedMapsTo429(t *testing.T) {
	f := newRouterFixture(config.Config{})
	f.pipeline.stepErr["clean"] = domain.WrapError(domain.ErrCleaning, "clean",
		domain.WrapError(domain.ErrRateLimited, "gateway chat", errors.New("429")))

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/documents/d1/clean", nil), "tok-handler")
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", res.Code)
	}
	if res.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestApprovePassesReviewerAndText(t *testing.T) {
	f := newRouterFixture(config.Config{})

	payload, _ := json.Marshal(map[string]string{"final_text": "schválený text"})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/d1/approve", bytes.NewReader(payload))
	res := f.do(req, "tok-handler")

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if f.pipeline.reviewer != "u1" || f.pipeline.text != "schválený text" {
		t.Fatalf("approve call = %q/%q", f.pipeline.reviewer, f.pipeline.text)
	}
}

func TestApproveNotReadyMapsTo400(t *testing.T) {
	f := newRouterFixture(config.Config{})
	f.pipeline.stepErr["approve"] = domain.WrapError(domain.ErrInvalidInput, "approve",
		errors.New("document is not ready for review"))

	payload, _ := json.Marshal(map[string]string{"final_text": "x"})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/d1/approve", bytes.NewReader(payload))
	res := f.do(req, "tok-handler")

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestForeignDocumentReadsAs404(t *testing.T) {
	f := newRouterFixture(config.Config{})

	// d2 hangs off c2, which belongs to u2; the handler session is u1
	for _, path := range []string{
		"/v1/documents/d2",
		"/v1/documents/d2/extract",
		"/v1/documents/d2/approve",
		"/v1/documents/d2/report",
	} {
		method := http.MethodPost
		if path == "/v1/documents/d2" {
			method = http.MethodGet
		}
		res := f.do(httptest.NewRequest(method, path, nil), "tok-handler")
		if res.Code != http.StatusNotFound {
			t.Fatalf("%s %s expected 404, got %d", method, path, res.Code)
		}
	}
	if f.pipeline.lastStep != "" {
		t.Fatalf("pipeline ran on foreign document: %q", f.pipeline.lastStep)
	}
}

func TestAdminSeesForeignDocument(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/documents/d2", nil), "tok-admin")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestGetDocumentNotFoundReturns404(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil), "tok-handler")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}
