package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mvarga/claimsdesk/internal/config"
)

func TestCreateClaimStampsSessionUser(t *testing.T) {
	f := newRouterFixture(config.Config{})

	payload, _ := json.Marshal(map[string]string{
		"claim_number": "PU-2026-010",
		"client_name":  "Peter Kováč",
		"claim_type":   "majetok",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/claims", bytes.NewReader(payload))
	res := f.do(req, "tok-handler")

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	if f.claims.created == nil || f.claims.created.CreatedBy != "u1" {
		t.Fatalf("created = %+v", f.claims.created)
	}
}

func TestCreateClaimInvalidInputReturns400(t *testing.T) {
	f := newRouterFixture(config.Config{})

	payload, _ := json.Marshal(map[string]string{"client_name": "bez čísla"})
	req := httptest.NewRequest(http.MethodPost, "/v1/claims", bytes.NewReader(payload))
	res := f.do(req, "tok-handler")

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestListClaimsScopedToSession(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims", nil), "tok-handler")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var body struct {
		Claims []struct {
			ID string `json:"id"`
		} `json:"claims"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Claims) != 1 || body.Claims[0].ID != "c1" {
		t.Fatalf("claims = %+v", body.Claims)
	}
}

func TestGetForeignClaimReadsAs404(t *testing.T) {
	f := newRouterFixture(config.Config{})

	// c2 belongs to u2; the handler session is u1
	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims/c2", nil), "tok-handler")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestAdminSeesForeignClaim(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims/c2", nil), "tok-admin")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestClaimWorkflowSummary(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims/c1/workflow", nil), "tok-handler")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"status":"processing"`) {
		t.Fatalf("body = %s", res.Body.String())
	}
}

func TestProcessClaimQueuesBatch(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/claims/c1/process", nil), "tok-handler")
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if len(f.queue.published) != 1 || f.queue.published[0] != "c1" {
		t.Fatalf("published = %v", f.queue.published)
	}
}

func TestProcessUnknownClaimReturns404(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodPost, "/v1/claims/missing/process", nil), "tok-handler")
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	if len(f.queue.published) != 0 {
		t.Fatalf("published = %v", f.queue.published)
	}
}
