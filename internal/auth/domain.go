package auth

import "time"

// User is the credential-bearing view of an account used during login.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated principal attached to request context.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

// Identity converts the credential view into its context representation.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Username: u.Username, Email: u.Email, IsStaff: u.IsStaff}
}
