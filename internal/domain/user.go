package domain

import "time"

// User represents a managed user account. Password always holds the bcrypt
// hash, never the plaintext.
type User struct {
	ID        string
	Username  string
	Password  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// String renders the user as their username.
func (u User) String() string {
	return u.Username
}
