package domain

// User is the operator profile returned by login and token verification.
type User struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// CanAdministerFeeds reports whether the profile may change feed tiers.
// The backend remains the authority; this only drives console hints.
func (u *User) CanAdministerFeeds() bool {
	return u != nil && u.IsAdmin
}
