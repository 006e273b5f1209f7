// internal/domain/models/profile.go
package models

// UserProfile is the authenticated operator's profile as returned by
// GET /api/auth/me. It is fetched fresh on each request so that role and
// department changes take effect immediately.
type UserProfile struct {
	RoleKey         string `json:"role_key"`
	Role            string `json:"role,omitempty"` // legacy field name, same value
	Department      string `json:"department"`
	CompanyUsername string `json:"company_username"`
	FullName        string `json:"full_name"`
	UserMacID       string `json:"user_mac_id"`
	ContactNo       string `json:"contact_no,omitempty"`
	IsActive        bool   `json:"is_active,omitempty"`
}

// EffectiveRole resolves the role key, preferring the current field name and
// falling back to the legacy one.
func (p *UserProfile) EffectiveRole() string {
	if p == nil {
		return ""
	}
	if p.RoleKey != "" {
		return NormalizeRole(p.RoleKey)
	}
	return NormalizeRole(p.Role)
}

// DisplayName returns the best human-readable name for the profile.
func (p *UserProfile) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return p.FullName
	}
	return p.CompanyUsername
}
