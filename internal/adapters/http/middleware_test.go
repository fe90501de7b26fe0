package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvarga/claimsdesk/internal/config"
)

func TestRateLimitReturns429WithRetryAfter(t *testing.T) {
	f := newRouterFixture(config.Config{APIRateLimitRPS: 1, APIRateLimitBurst: 1})

	res1 := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	res2 := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}

func TestRateLimitDisabledWhenZero(t *testing.T) {
	f := newRouterFixture(config.Config{})

	for i := 0; i < 5; i++ {
		res := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
		if res.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i, res.Code)
		}
	}
}

func TestMissingBearerTokenReturns401(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims", nil), "")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestUnknownTokenReturns401(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/v1/claims", nil), "tok-unknown")
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestHealthzSkipsAuth(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	f := newRouterFixture(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-abc")
	res := f.do(req, "")

	if got := res.Header().Get(requestIDHeader); got != "req-abc" {
		t.Fatalf("request id header = %q", got)
	}
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	f := newRouterFixture(config.Config{})

	res := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}
}
