package model

import "github.com/golang-jwt/jwt/v5"

// Claims are the identity token claims issued by the identity provider.
// Subject carries the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller resolved for a request
type Principal struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the caller may author surveys and review responses
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
