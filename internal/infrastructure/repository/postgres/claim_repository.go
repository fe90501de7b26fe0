package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

type ClaimRepository struct {
	db *sql.DB
}

func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

func (r *ClaimRepository) Create(ctx context.Context, claim *domain.Claim) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO claims (
	id, claim_number, client_name, policy_number, claim_type, status, created_by, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		claim.ID, claim.ClaimNumber, claim.ClientName, claim.PolicyNumber,
		claim.ClaimType, string(claim.Status), claim.CreatedBy, claim.CreatedAt, claim.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, claim_number, client_name, policy_number, claim_type, status, created_by, created_at, updated_at
FROM claims
WHERE id = $1
`, id)

	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrClaimNotFound, "get claim", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan claim: %w", err)
	}
	return claim, nil
}

// ListByOwner returns the owner's claims, or every claim when ownerID is
// empty (admin view).
func (r *ClaimRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Claim, error) {
	const base = `
SELECT id, claim_number, client_name, policy_number, claim_type, status, created_by, created_at, updated_at
FROM claims
`
	var (
		rows *sql.Rows
		err  error
	)
	if ownerID == "" {
		rows, err = r.db.QueryContext(ctx, base+`ORDER BY created_at DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx, base+`WHERE created_by = $1 ORDER BY created_at DESC`, ownerID)
	}
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	var claims []domain.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, *claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return claims, nil
}

func (r *ClaimRepository) UpdateStatus(ctx context.Context, id string, status domain.ClaimStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE claims
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrClaimNotFound, "update claim status", fmt.Errorf("id %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*domain.Claim, error) {
	var claim domain.Claim
	var status string
	err := row.Scan(
		&claim.ID, &claim.ClaimNumber, &claim.ClientName, &claim.PolicyNumber,
		&claim.ClaimType, &status, &claim.CreatedBy, &claim.CreatedAt, &claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	claim.Status = domain.ClaimStatus(status)
	return &claim, nil
}
