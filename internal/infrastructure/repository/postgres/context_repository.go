package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// ContextRepository reads the admin-maintained prompt inputs: insurance
// context blocks and analysis types.
type ContextRepository struct {
	db *sql.DB
}

func NewContextRepository(db *sql.DB) *ContextRepository {
	return &ContextRepository{db: db}
}

func (r *ContextRepository) ListActive(ctx context.Context) ([]domain.InsuranceContext, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, content, context_type, is_active, created_at, updated_at
FROM insurance_context
WHERE is_active
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query insurance contexts: %w", err)
	}
	return collectContexts(rows)
}

func (r *ContextRepository) ListByIDs(ctx context.Context, ids []string) ([]domain.InsuranceContext, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, content, context_type, is_active, created_at, updated_at
FROM insurance_context
WHERE id = ANY($1)
ORDER BY created_at ASC
`, ids)
	if err != nil {
		return nil, fmt.Errorf("query insurance contexts by ids: %w", err)
	}
	return collectContexts(rows)
}

func (r *ContextRepository) GetAnalysisType(ctx context.Context, id string) (*domain.AnalysisType, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, description, system_prompt, is_active, created_at
FROM analysis_types
WHERE id = $1
`, id)

	var at domain.AnalysisType
	err := row.Scan(&at.ID, &at.Name, &at.Description, &at.SystemPrompt, &at.Active, &at.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "get analysis type", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan analysis type: %w", err)
	}
	return &at, nil
}

func collectContexts(rows *sql.Rows) ([]domain.InsuranceContext, error) {
	defer rows.Close()

	var contexts []domain.InsuranceContext
	for rows.Next() {
		var c domain.InsuranceContext
		err := rows.Scan(&c.ID, &c.Title, &c.Content, &c.ContextType, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan insurance context: %w", err)
		}
		contexts = append(contexts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insurance contexts: %w", err)
	}
	return contexts, nil
}
