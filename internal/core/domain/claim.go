package domain

import "time"

// Claim is one insurance event a handler works on. Documents own the
// pipeline state; Status here is the coarse list-view value.
type Claim struct {
	ID           string      `json:"id"`
	ClaimNumber  string      `json:"claim_number"`
	ClientName   string      `json:"client_name"`
	PolicyNumber string      `json:"policy_number"`
	ClaimType    string      `json:"claim_type"`
	Status       ClaimStatus `json:"status"`
	CreatedBy    string      `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
