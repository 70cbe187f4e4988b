package auth

import "time"

// Roles conocidos.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleVet   = "vet"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// IsStaff: admin o veterinario.
func (c Claims) IsStaff() bool {
	return c.Role == RoleAdmin || c.Role == RoleVet
}

// Token firmado listo para entregar al cliente.
type Token struct {
	Value     string
	ExpiresAt time.Time
}
