// Package model defines domain entities for the application.
package model

import "time"

// User is a registered account that can own items.
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// NewUser holds the fields required to create a user.
type NewUser struct {
	Email    string
	FullName string
}

// UserPatch is a partial update; nil fields are left unchanged.
type UserPatch struct {
	Email    *string
	FullName *string
}

// EmailChanges reports whether applying the patch to u changes its email.
func (p UserPatch) EmailChanges(u *User) bool {
	return p.Email != nil && *p.Email != u.Email
}

// Apply writes the patch onto u and stamps UpdatedAt.
func (p UserPatch) Apply(u *User, now time.Time) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	stamp := now
	u.UpdatedAt = &stamp
}
