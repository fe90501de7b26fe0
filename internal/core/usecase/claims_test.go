package usecase

import (
	"context"
	"testing"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

func TestCreateClaimSuccess(t *testing.T) {
	repo := &claimRepoFake{}
	uc := NewClaims(repo)

	claim, err := uc.CreateClaim(context.Background(), &domain.Claim{
		ClaimNumber: "PU-2024-042",
		ClientName:  "Ján Novák",
		ClaimType:   "havarijné poistenie",
		CreatedBy:   "user-7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claim.ID == "" {
		t.Fatal("id not assigned")
	}
	if claim.Status != domain.ClaimStatusNew {
		t.Fatalf("status = %s", claim.Status)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d claims", len(repo.created))
	}
}

func TestCreateClaimValidation(t *testing.T) {
	uc := NewClaims(&claimRepoFake{})

	for _, claim := range []*domain.Claim{
		{ClientName: "Ján Novák", ClaimType: "majetok"},
		{ClaimNumber: "PU-1", ClaimType: "majetok"},
		{ClaimNumber: "PU-1", ClientName: "Ján Novák"},
	} {
		if _, err := uc.CreateClaim(context.Background(), claim); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("claim %+v: want invalid-input kind, got %v", claim, err)
		}
	}
}

func TestListClaimsScoping(t *testing.T) {
	repo := &claimRepoFake{list: []domain.Claim{{ID: "c1"}}}
	uc := NewClaims(repo)

	handler := &domain.Session{UserID: "user-7", Role: domain.RoleHandler}
	if _, err := uc.ListClaims(context.Background(), handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin := &domain.Session{UserID: "admin-1", Role: domain.RoleAdmin}
	if _, err := uc.ListClaims(context.Background(), admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
