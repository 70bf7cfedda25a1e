// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Users can register with email + password, or sign in through GitHub
// OAuth. A password account has PasswordHash set and GitHubID zero; a
// GitHub account has GitHubID set and an empty PasswordHash. Both get the
// same internal xid so snippets reference owners uniformly.
//
// PasswordHash is never serialized — note the `json:"-"` tag. The bcrypt
// hash must not leak through any API response.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"-"` // GitHub's numeric user ID, 0 for password accounts
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
