package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

func TestIndexChunksUpsertsPoints(t *testing.T) {
	var paths []string
	var upsert struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/points") {
			if err := json.NewDecoder(r.Body).Decode(&upsert); err != nil {
				t.Errorf("decode upsert: %v", err)
			}
		}
		_, _ = w.Write([]byte(`{"result":{}}`))
	}))
	defer server.Close()

	client := New(server.URL, "knowledge")
	entry := &domain.KnowledgeEntry{ID: "e1", Title: "VPP", PolicyTypes: []string{"majetok"}}
	err := client.IndexChunks(context.Background(), entry,
		[]string{"chunk a", "chunk b"},
		[][]float32{{0.1, 0.2}, {0.3, 0.4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// collection ensure then upsert
	if len(paths) != 2 || !strings.Contains(paths[0], "PUT /collections/knowledge") {
		t.Fatalf("paths = %v", paths)
	}
	if len(upsert.Points) != 2 {
		t.Fatalf("points = %+v", upsert.Points)
	}
	if upsert.Points[0].Payload["entry_id"] != "e1" || upsert.Points[1].Payload["text"] != "chunk b" {
		t.Fatalf("payload = %+v", upsert.Points)
	}
}

func TestSearchBuildsFilterAndParsesHits(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode search: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":[{"score":0.92,"payload":{"entry_id":"e1","title":"VPP","chunk_index":3,"text":"výluka povodeň"}}]}`))
	}))
	defer server.Close()

	client := New(server.URL, "knowledge")
	hits, err := client.Search(context.Background(), []float32{0.1}, 5,
		domain.KnowledgeFilter{PolicyType: "majetok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %+v", hits)
	}
	hit := hits[0]
	if hit.EntryID != "e1" || hit.ChunkIndex != 3 || hit.Score < 0.9 {
		t.Fatalf("hit = %+v", hit)
	}
	if got["filter"] == nil {
		t.Fatal("filter not sent")
	}
}

func TestSearchWithoutFilterOmitsIt(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode search: %v", err)
		}
		_, _ = w.Write([]byte(`{"result":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "knowledge")
	if _, err := client.Search(context.Background(), []float32{0.1}, 5, domain.KnowledgeFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["filter"]; ok {
		t.Fatal("empty filter sent")
	}
}
