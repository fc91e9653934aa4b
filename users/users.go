package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role represents a user's role on the platform. The set is closed: anything
// outside these four values is rejected at the boundary.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleDepartmentHead  Role = "department_head"
	RoleDepartmentStaff Role = "department_staff"
	RoleCitizen         Role = "user"
)

// Valid reports whether the role is one of the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDepartmentHead, RoleDepartmentStaff, RoleCitizen:
		return true
	}
	return false
}

// RoleSet is a membership set over Role, used for role-gated routes.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether the role is a member of the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

type User struct {
	ID           string    `json:"id" db:"id"`                 // Unique identifier for the user
	Email        string    `json:"email" db:"email"`           // User's email address
	FullName     string    `json:"full_name" db:"full_name"`   // Display name
	Role         Role      `json:"role" db:"role"`             // Platform role
	PasswordHash string    `json:"-" db:"password_hash"`       // Hashed password - never serialize
	Active       bool      `json:"active" db:"active"`         // Deactivated accounts are denied on the next request
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // When the account was created
	LastLoginAt  time.Time `json:"last_login_at" db:"last_login_at"`
}

// HashPassword hashes a plaintext password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash reports whether the plaintext password matches the hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Sanitized returns a copy safe to hand to request contexts and responses:
// the password hash is stripped.
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	return &u
}
