package entities

import "time"

// PendingTTL is how long an unverified account lives before it is purged.
const PendingTTL = 24 * time.Hour

// User represents a user entity in the database
type User struct {
	ID           string    `json:"id"` // UUID
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"` // nil means no local password (Google accounts)
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasLocalPassword reports whether password sign-in is possible for this user.
func (u *User) HasLocalPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// PendingExpired reports whether an unverified account has outlived PendingTTL.
func (u *User) PendingExpired(now time.Time) bool {
	return !u.IsVerified && now.Sub(u.CreatedAt) >= PendingTTL
}
