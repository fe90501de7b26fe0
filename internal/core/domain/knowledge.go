package domain

import "time"

// KnowledgeEntry is a reference document ingested into the knowledge base.
// It is not part of the document pipeline; report generation consumes it as
// retrieval context.
type KnowledgeEntry struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	PolicyTypes    []string  `json:"policy_types"`
	Categories     []string  `json:"categories"`
	SourceDocument string    `json:"source_document,omitempty"`
	Active         bool      `json:"is_active"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// KnowledgeFilter narrows a semantic search.
type KnowledgeFilter struct {
	PolicyType string
	Category   string
}

// KnowledgeHit is one retrieved chunk with its similarity score.
type KnowledgeHit struct {
	EntryID    string  `json:"entry_id"`
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}
