package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvarga/claimsdesk/internal/core/domain"
	"github.com/mvarga/claimsdesk/internal/core/ports"
)

// Claims manages claim records. Listing is owner-scoped for handlers and
// unrestricted for admins.
type Claims struct {
	claims ports.ClaimRepository
}

func NewClaims(claims ports.ClaimRepository) *Claims {
	return &Claims{claims: claims}
}

func (uc *Claims) CreateClaim(ctx context.Context, claim *domain.Claim) (*domain.Claim, error) {
	if strings.TrimSpace(claim.ClaimNumber) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create claim", errors.New("claim number is required"))
	}
	if strings.TrimSpace(claim.ClientName) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create claim", errors.New("client name is required"))
	}
	if strings.TrimSpace(claim.ClaimType) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create claim", errors.New("claim type is required"))
	}

	now := time.Now().UTC()
	claim.ID = uuid.NewString()
	claim.Status = domain.ClaimStatusNew
	claim.CreatedAt = now
	claim.UpdatedAt = now

	if err := uc.claims.Create(ctx, claim); err != nil {
		return nil, fmt.Errorf("save claim: %w", err)
	}

	slog.Info("claim_created", "claim_id", claim.ID, "claim_number", claim.ClaimNumber)
	return claim, nil
}

func (uc *Claims) GetClaim(ctx context.Context, id string) (*domain.Claim, error) {
	claim, err := uc.claims.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch claim by id: %w", err)
	}
	return claim, nil
}

func (uc *Claims) ListClaims(ctx context.Context, session *domain.Session) ([]domain.Claim, error) {
	owner := session.UserID
	if session.IsAdmin() {
		owner = ""
	}
	claims, err := uc.claims.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}
