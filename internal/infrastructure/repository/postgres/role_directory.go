package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// RoleDirectory resolves bearer tokens against the api_tokens and
// user_roles tables. An unknown token and a token without a role row both
// come back unauthorized; the handler never learns which.
type RoleDirectory struct {
	db *sql.DB
}

func NewRoleDirectory(db *sql.DB) *RoleDirectory {
	return &RoleDirectory{db: db}
}

func (d *RoleDirectory) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve token", errors.New("empty token"))
	}

	row := d.db.QueryRowContext(ctx, `
SELECT u.user_id, u.email, u.role
FROM api_tokens t
JOIN user_roles u ON u.user_id = t.user_id
WHERE t.token = $1
`, token)

	var session domain.Session
	var role string
	if err := row.Scan(&session.UserID, &session.Email, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "resolve token", errors.New("unknown token"))
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	session.Role = domain.Role(role)
	if session.Role != domain.RoleHandler && session.Role != domain.RoleAdmin {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve token", fmt.Errorf("unknown role %q", role))
	}
	return &session, nil
}
