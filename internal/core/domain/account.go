package domain

import "time"

// Account is a registered identity. It is also the identity value handed to
// authorization checks once a bearer token has been resolved.
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"ativo"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin is nil-safe: an absent identity is never privileged.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Admin
}
