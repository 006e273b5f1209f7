// internal/domain/models/selecteduser.go
package models

import "encoding/json"

// SelectedUserKey is the session key the selected-user blob is stored under.
// The value is versioned so a future shape change can invalidate old blobs
// instead of misreading them.
const SelectedUserKey = "selected_user_v1"

// SelectedUser is the single user the console is currently scoped to for
// user-specific views (logs, screenshots, insights).
//
// ID must hold the unique identity (the agent's mac id / record _id), never
// the company username: usernames are not guaranteed unique and scoping by
// them can merge two people's data.
type SelectedUser struct {
	ID              string `json:"id"`
	CompanyUsername string `json:"company_username"`
	FullName        string `json:"full_name"`
	Department      string `json:"department"`
	RoleKey         string `json:"role_key"`
}

// DecodeSelectedUser parses a persisted selected-user blob. A malformed or
// empty blob reads as "no selection"; it never returns an error.
func DecodeSelectedUser(raw string) *SelectedUser {
	if raw == "" {
		return nil
	}
	var u SelectedUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	if u.ID == "" && u.CompanyUsername == "" {
		return nil
	}
	return &u
}

// Encode serializes the selection for session storage.
func (u *SelectedUser) Encode() string {
	if u == nil {
		return ""
	}
	b, err := json.Marshal(u)
	if err != nil {
		return ""
	}
	return string(b)
}

// DisplayName returns the best human-readable name for the selection.
func (u *SelectedUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.CompanyUsername
}
