package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// addKnowledgeEntry ingests one reference document into the knowledge base.
// Admin only: the knowledge base is shared across all handlers.
func (rt *Router) addKnowledgeEntry(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	if !session.IsAdmin() {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
		return
	}

	var req struct {
		Title          string   `json:"title"`
		Content        string   `json:"content"`
		PolicyTypes    []string `json:"policy_types"`
		Categories     []string `json:"categories"`
		SourceDocument string   `json:"source_document"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	entry := &domain.KnowledgeEntry{
		Title:          req.Title,
		Content:        req.Content,
		PolicyTypes:    req.PolicyTypes,
		Categories:     req.Categories,
		SourceDocument: req.SourceDocument,
		Active:         true,
		CreatedBy:      session.UserID,
	}
	chunks, err := rt.knowledge.AddEntry(r.Context(), entry)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"entry_id": entry.ID,
		"chunks":   chunks,
	})
}

func (rt *Router) searchKnowledge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query      string `json:"query"`
		Limit      int    `json:"limit"`
		PolicyType string `json:"policy_type"`
		Category   string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = rt.cfg.KnowledgeTopK
	}
	hits, err := rt.knowledge.Search(r.Context(), req.Query, limit, domain.KnowledgeFilter{
		PolicyType: req.PolicyType,
		Category:   req.Category,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordKnowledgeSearch("api", len(hits))
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": hits})
}
