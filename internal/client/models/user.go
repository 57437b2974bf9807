// Package models defines the client-side data shapes exchanged with the
// Vira a Página backend.
package models

// Roles observed across backend revisions.
const (
	RoleStudent   = "student"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User is the identity record kept in the session.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// IsModerator reports whether the user may use the moderation tools.
func (u User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// UserPatch is a partial User. Nil fields are left untouched by Merge.
type UserPatch struct {
	ID    *int64  `json:"id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *string `json:"role,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p UserPatch) Empty() bool {
	return p.ID == nil && p.Name == nil && p.Email == nil && p.Role == nil
}

// Merge returns a copy of u with the non-nil fields of p applied.
func (u User) Merge(p UserPatch) User {
	if p.ID != nil {
		u.ID = *p.ID
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	return u
}

// UserRef is the display-only view of the other party in an exchange.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
