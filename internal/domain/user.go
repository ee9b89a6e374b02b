package domain

import "time"

// Role is the kind of account holder
type Role string

const (
	RoleDoctor Role = "doctor"
	RoleParent Role = "parent"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleDoctor || r == RoleParent
}

// AuthProvider is the identity provider the account was registered with
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderApple  AuthProvider = "apple"
)

func (p AuthProvider) Valid() bool {
	switch p {
	case AuthProviderEmail, AuthProviderGoogle, AuthProviderApple:
		return true
	}
	return false
}

// User represents an account that owns patient records
type User struct {
	ID           string       `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	PasswordHash *string      `json:"-" db:"password_hash"`
	Name         string       `json:"name" db:"name"`
	Role         Role         `json:"role" db:"role"`
	FederatedID  *string      `json:"-" db:"federated_id"`
	AuthProvider AuthProvider `json:"authProvider" db:"auth_provider"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether the user can sign in with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// HasFederatedID reports whether the user is linked to an external identity
func (u *User) HasFederatedID() bool {
	return u.FederatedID != nil && *u.FederatedID != ""
}
