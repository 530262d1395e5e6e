package users

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents the console role granted to an operator account
type RoleType string

const (
	RoleAnalyst RoleType = "analyst" // Default role for self-registered accounts
	RoleAdmin   RoleType = "admin"   // Can manage alerts for every analyst
)

// Profile is the identity the analytics API returns on login. It is persisted next to
// the session token and mirrored into the session state.
type Profile struct {
	UserID   string   `json:"user_id"`
	Username string   `json:"username"`
	Role     RoleType `json:"role"`
}

// Valid reports whether the profile carries enough identity to back a session.
func (p *Profile) Valid() bool {
	return p != nil && strings.TrimSpace(p.UserID) != "" && strings.TrimSpace(p.Username) != ""
}

// IsAdmin returns true if the profile has the admin role
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Account is the server side record of an operator, as kept by the mock API.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never serialize
	Role         RoleType  `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile projects the account onto the identity handed to clients
func (a *Account) Profile() Profile {
	role := a.Role
	if role == "" {
		role = RoleAnalyst
	}
	return Profile{UserID: a.ID, Username: a.Username, Role: role}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
