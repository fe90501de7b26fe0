package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

func TestRefineSendsPromptPair(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key-1" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Opravený text s [PERSON_NAME]."}}]}`))
	}))
	defer server.Close()

	refiner := NewRefiner(New(server.URL, "key-1", "gpt-4o-mini", "text-embedding-3-small"))
	out, err := refiner.Refine(context.Background(), "povodny text s [PERSON_NAME]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Opravený text s [PERSON_NAME]." {
		t.Fatalf("out = %q", out)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if got.ResponseFormat != nil {
		t.Fatal("refine must not force json mode")
	}
}

func TestGenerateReportParsesWrappedJSON(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		content := "```json\n{\"summary\":\"s\",\"relevance_analysis\":\"r\",\"exclusions_analysis\":\"e\",\"recommendation\":\"schváliť\",\"justification\":\"j\"}\n```"
		resp := map[string]any{"choices": []map[string]any{{"message": map[string]any{"content": content}}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	engine := NewReportEngine(New(server.URL, "", "gpt-4o", ""))
	content, err := engine.GenerateReport(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !content.Complete() || content.Recommendation != "schváliť" {
		t.Fatalf("content = %+v", content)
	}
	if got.ResponseFormat == nil || got.ResponseFormat["type"] != "json_object" {
		t.Fatalf("response_format = %v", got.ResponseFormat)
	}
}

func TestRateLimitMapsToDomainKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	refiner := NewRefiner(New(server.URL, "", "m", ""))
	_, err := refiner.Refine(context.Background(), "text")
	if !domain.IsKind(err, domain.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
}

func TestPaymentRequiredMapsToDomainKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "insufficient credit", http.StatusPaymentRequired)
	}))
	defer server.Close()

	engine := NewReportEngine(New(server.URL, "", "m", ""))
	_, err := engine.GenerateReport(context.Background(), "s", "u")
	if !domain.IsKind(err, domain.ErrPaymentRequired) {
		t.Fatalf("want ErrPaymentRequired, got %v", err)
	}
}

func TestEmbedParsesVectors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]},{"embedding":[0.3,0.4]}]}`))
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "", "", "text-embedding-3-small"))
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 || len(vectors[0]) != 2 {
		t.Fatalf("vectors = %v", vectors)
	}

	vec, err := embedder.EmbedQuery(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 {
		t.Fatalf("vec = %v", vec)
	}
}
