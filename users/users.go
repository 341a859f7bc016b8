package users

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is a role tag granted to a user
type RoleType string

const (
	RoleUser  RoleType = "USER"  // Regular API user
	RoleAdmin RoleType = "ADMIN" // Administrative access
)

type User struct {
	Login        string     `json:"login"`               // Unique login, primary key of the directory
	PasswordHash string     `json:"password"`            // bcrypt hash, or a plain credential for seeded/dev directories
	FirstName    string     `json:"firstName,omitempty"` // Display name, embedded in access tokens
	LastName     string     `json:"lastName,omitempty"`  // Display name, never placed in tokens
	Roles        []RoleType `json:"roles,omitempty"`     // Role tags embedded in access tokens
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// IsBcryptHash reports whether a stored credential is a bcrypt hash
func IsBcryptHash(credential string) bool {
	return strings.HasPrefix(credential, "$2a$") ||
		strings.HasPrefix(credential, "$2b$") ||
		strings.HasPrefix(credential, "$2y$")
}

// CheckPassword compares a supplied password with the stored credential.
// bcrypt hashes are verified with bcrypt; anything else must match exactly.
func (u *User) CheckPassword(password string) bool {
	if IsBcryptHash(u.PasswordHash) {
		return CheckPasswordHash(password, u.PasswordHash)
	}
	return subtle.ConstantTimeCompare([]byte(u.PasswordHash), []byte(password)) == 1
}

// RoleNames returns the role tags as plain strings, in the order they were granted
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r))
	}
	return names
}

// Clone returns a deep copy so callers cannot mutate directory state
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]RoleType(nil), u.Roles...)
	return &c
}
