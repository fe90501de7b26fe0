package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	contentJSON, err := json.Marshal(report.Content)
	if err != nil {
		return fmt.Errorf("marshal report content: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO reports (
	id, claim_id, document_id, content, analysis_type_id, analysis_type_name, generated_by, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
		report.ID, report.ClaimID, report.DocumentID, contentJSON,
		report.AnalysisTypeID, report.AnalysisTypeName, report.GeneratedBy, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) ListByClaim(ctx context.Context, claimID string) ([]domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, claim_id, document_id, content, analysis_type_id, analysis_type_name, generated_by, created_at
FROM reports
WHERE claim_id = $1
ORDER BY created_at DESC
`, claimID)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		var report domain.Report
		var contentRaw []byte
		err := rows.Scan(
			&report.ID, &report.ClaimID, &report.DocumentID, &contentRaw,
			&report.AnalysisTypeID, &report.AnalysisTypeName, &report.GeneratedBy, &report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if err := json.Unmarshal(contentRaw, &report.Content); err != nil {
			return nil, fmt.Errorf("unmarshal report content: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func (r *ReportRepository) CountByClaim(ctx context.Context, claimID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports WHERE claim_id = $1`, claimID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}
