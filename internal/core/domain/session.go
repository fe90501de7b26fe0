package domain

type Role string

const (
	RoleHandler Role = "handler"
	RoleAdmin   Role = "admin"
)

// Session is the role-tagged identity resolved once per request by the
// capability check and passed explicitly to handlers and usecases.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
