package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Actor is the authenticated user on whose behalf a mutation runs. Identity
// and role gating are resolved by the caller; the core only checks ownership.
type Actor struct {
	UserID    int64  `json:"user_id"`
	Role      Role   `json:"role"`
	IPAddress string `json:"ip_address,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Elevated reports whether the actor may act on registers owned by others.
func (a Actor) Elevated() bool {
	return a.Role == RoleAdmin
}
