package domain

import "time"

// Role is the privilege attached to an API key.
type Role string

// API key roles.
const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

// Roles lists the roles in selector order.
var Roles = []Role{RoleReader, RoleAdmin}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleReader || r == RoleAdmin
}

// secretPreviewLen is how much of a key secret list views reveal.
const secretPreviewLen = 20

// APIKey is a consumer credential issued by the platform.
type APIKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Secret    string    `json:"key"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// MaskedSecret returns the secret truncated for display after creation.
func (k APIKey) MaskedSecret() string {
	if len(k.Secret) <= secretPreviewLen {
		return k.Secret + "..."
	}
	return k.Secret[:secretPreviewLen] + "..."
}
