package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/core/ports"
)

// Knowledge chunks, embeds and indexes policy-condition texts, and answers
// semantic lookups against the index.
type Knowledge struct {
	chunker  ports.Chunker
	embedder ports.Embedder
	store    ports.KnowledgeStore
}

func NewKnowledge(chunker ports.Chunker, embedder ports.Embedder, store ports.KnowledgeStore) *Knowledge {
	return &Knowledge{chunker: chunker, embedder: embedder, store: store}
}

// AddEntry splits the entry into chunks, embeds them and writes them to the
// vector store. Returns the number of indexed chunks.
func (uc *Knowledge) AddEntry(ctx context.Context, entry *domain.KnowledgeEntry) (int, error) {
	if strings.TrimSpace(entry.Content) == "" {
		return 0, domain.WrapError(domain.ErrInvalidInput, "add knowledge entry", errors.New("content is empty"))
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	chunks := uc.chunker.Split(entry.Content)
	if len(chunks) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "add knowledge entry", errors.New("content produced no chunks"))
	}

	vectors, err := uc.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed knowledge chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed knowledge chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := uc.store.IndexChunks(ctx, entry, chunks, vectors); err != nil {
		return 0, fmt.Errorf("index knowledge chunks: %w", err)
	}

	slog.Info("knowledge_entry_indexed", "entry_id", entry.ID, "title", entry.Title, "chunks", len(chunks))
	return len(chunks), nil
}

// Search embeds the query and returns the closest chunks.
func (uc *Knowledge) Search(ctx context.Context, query string, limit int, filter domain.KnowledgeFilter) ([]domain.KnowledgeHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "search knowledge", errors.New("query is empty"))
	}
	if limit <= 0 {
		limit = 5
	}

	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.store.Search(ctx, vector, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("search knowledge store: %w", err)
	}
	return hits, nil
}
