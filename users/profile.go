package users

import "strings"

// Profile is the authenticated user snapshot returned by the protected API.
// It mirrors the wire shape of the login response's user object and the
// /users/me/ endpoint.
type Profile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
	IsActive  bool   `json:"is_active"`
}

// DisplayName returns the trimmed "FirstName LastName", falling back to the
// username when both name fields are empty.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FirstName != "" || p.LastName != "" {
		return strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	return p.Username
}
